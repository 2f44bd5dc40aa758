package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// DeleteBookUseCase 图书删除用例
type DeleteBookUseCase struct {
	bookService book.Service
	publisher   mq.EventPublisher
	cache       TopRatedCache
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service, publisher mq.EventPublisher, cache TopRatedCache) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		publisher:   publisher,
		cache:       cache,
	}
}

// BookDeletedEvent 图书删除事件
type BookDeletedEvent struct {
	BookID   uint `json:"book_id"`
	CallerID uint `json:"caller_id"`
}

// Execute 执行删除用例
func (uc *DeleteBookUseCase) Execute(ctx context.Context, callerID, bookID uint) error {
	if err := uc.bookService.DeleteBook(ctx, callerID, bookID); err != nil {
		return err
	}

	uc.cache.Invalidate(ctx)

	if err := uc.publisher.Publish(ctx, mq.RoutingKeyBookDeleted, BookDeletedEvent{
		BookID:   bookID,
		CallerID: callerID,
	}); err != nil {
		logger.L().WithError(err).Warn("图书删除事件发布失败")
	}

	return nil
}
