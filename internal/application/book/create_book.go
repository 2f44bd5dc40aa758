package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/asset"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// CreateBookUseCase 创建图书用例
// 设计说明:
// 1. 应用层负责用例编排:调用领域服务完成创建,再处理事件发布、
//    指标上报、缓存失效等横切关注点
// 2. 事件发布为尽力而为:失败只记录日志,不回滚已创建的记录
type CreateBookUseCase struct {
	bookService book.Service
	publisher   mq.EventPublisher
	cache       TopRatedCache
}

// NewCreateBookUseCase 创建用例
func NewCreateBookUseCase(bookService book.Service, publisher mq.EventPublisher, cache TopRatedCache) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookService: bookService,
		publisher:   publisher,
		cache:       cache,
	}
}

// CreateBookRequest 创建请求DTO
// CallerID来自认证中间件,载荷中的owner字段一律忽略
type CreateBookRequest struct {
	CallerID uint
	Title    string
	Author   string
	Year     int
	Genre    string
	Grade    int // 创建者的种子评分
	Image    *asset.Upload
}

// BookCreatedEvent 图书创建事件
type BookCreatedEvent struct {
	BookID  uint   `json:"book_id"`
	OwnerID uint   `json:"owner_id"`
	Title   string `json:"title"`
}

// Execute 执行创建用例
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookDTO, error) {
	fields := book.CreateFields{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Genre:  req.Genre,
		Grade:  req.Grade,
	}

	b, err := uc.bookService.CreateBook(ctx, req.CallerID, fields, req.Image)
	if err != nil {
		return nil, err
	}

	metrics.BooksCreatedTotal.Inc()
	uc.cache.Invalidate(ctx)

	if err := uc.publisher.Publish(ctx, mq.RoutingKeyBookCreated, BookCreatedEvent{
		BookID:  b.ID,
		OwnerID: b.OwnerID,
		Title:   b.Title,
	}); err != nil {
		logger.L().WithError(err).Warn("图书创建事件发布失败")
	}

	return toDTO(b), nil
}
