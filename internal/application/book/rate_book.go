package book

import (
	"context"
	"errors"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/mq"
)

// RateBookUseCase 评分提交用例
type RateBookUseCase struct {
	bookService book.Service
	publisher   mq.EventPublisher
	cache       TopRatedCache
}

// NewRateBookUseCase 创建评分用例
func NewRateBookUseCase(bookService book.Service, publisher mq.EventPublisher, cache TopRatedCache) *RateBookUseCase {
	return &RateBookUseCase{
		bookService: bookService,
		publisher:   publisher,
		cache:       cache,
	}
}

// BookRatedEvent 图书评分事件
type BookRatedEvent struct {
	BookID        uint    `json:"book_id"`
	VoterID       uint    `json:"voter_id"`
	Grade         int     `json:"grade"`
	AverageRating float64 `json:"average_rating"`
}

// Execute 执行评分用例
// 任何已登录用户均可评分,与更新/删除的所有者校验无关
func (uc *RateBookUseCase) Execute(ctx context.Context, callerID, bookID uint, grade int) (*BookDTO, error) {
	b, err := uc.bookService.RateBook(ctx, callerID, bookID, grade)
	if err != nil {
		switch {
		case errors.Is(err, book.ErrDuplicateRating):
			metrics.RatingsSubmittedTotal.WithLabelValues("duplicate").Inc()
		case errors.Is(err, book.ErrInvalidGrade):
			metrics.RatingsSubmittedTotal.WithLabelValues("invalid").Inc()
		}
		return nil, err
	}

	metrics.RatingsSubmittedTotal.WithLabelValues("success").Inc()

	// 平均分变化影响高分榜
	uc.cache.Invalidate(ctx)

	if err := uc.publisher.Publish(ctx, mq.RoutingKeyBookRated, BookRatedEvent{
		BookID:        bookID,
		VoterID:       callerID,
		Grade:         grade,
		AverageRating: b.AverageRating,
	}); err != nil {
		logger.L().WithError(err).Warn("图书评分事件发布失败")
	}

	return toDTO(b), nil
}
