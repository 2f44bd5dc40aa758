package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// TopRatedLimit 高分榜长度
const TopRatedLimit = 3

// TopRatedUseCase 高分榜查询用例
// 设计说明:
// 1. 榜单读多写少,用Redis缓存挡住热点查询
// 2. 缓存未命中时回源数据库(按平均分降序的索引扫描)并回填
// 3. 缓存读写失败降级为直接查库,由缓存实现记录日志
type TopRatedUseCase struct {
	bookService book.Service
	cache       TopRatedCache
}

// NewTopRatedUseCase 创建高分榜查询用例
func NewTopRatedUseCase(bookService book.Service, cache TopRatedCache) *TopRatedUseCase {
	return &TopRatedUseCase{bookService: bookService, cache: cache}
}

// Execute 执行高分榜查询
func (uc *TopRatedUseCase) Execute(ctx context.Context) ([]*BookDTO, error) {
	if books, ok := uc.cache.Get(ctx); ok {
		return toDTOList(books), nil
	}

	books, err := uc.bookService.ListTopRated(ctx, TopRatedLimit)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(ctx, books)
	return toDTOList(books), nil
}
