package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/asset"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// UpdateBookUseCase 图书更新用例
type UpdateBookUseCase struct {
	bookService book.Service
	cache       TopRatedCache
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(bookService book.Service, cache TopRatedCache) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookService: bookService, cache: cache}
}

// UpdateBookRequest 更新请求DTO
// 指针字段为nil表示该字段未提交,保留原值
type UpdateBookRequest struct {
	CallerID uint
	BookID   uint
	Title    *string
	Author   *string
	Year     *int
	Genre    *string
	Image    *asset.Upload
}

// Execute 执行更新用例
// 权限校验、字段合并、封面替换均由领域服务完成
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (*BookDTO, error) {
	patch := book.Patch{
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Genre:  req.Genre,
	}

	b, err := uc.bookService.UpdateBook(ctx, req.CallerID, req.BookID, patch, req.Image)
	if err != nil {
		return nil, err
	}

	// 书名/作者可能出现在高分榜展示中
	uc.cache.Invalidate(ctx)

	return toDTO(b), nil
}
