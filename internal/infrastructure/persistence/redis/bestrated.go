package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/logger"
)

// bestRatedKey 高分榜缓存Key
const bestRatedKey = "books:bestrated"

// bestRatedTTL 高分榜缓存有效期
// 即使失效通知丢失,榜单最多滞后这么久
const bestRatedTTL = 5 * time.Minute

// BestRatedCache 高分榜Redis缓存
// 设计说明:
// 1. 榜单整体序列化为一个JSON值,读写各一次往返
// 2. 缓存读写失败只记录日志:缓存是加速层,故障时降级为直接查库
// 3. 实现application/book.TopRatedCache接口
type BestRatedCache struct {
	client *redis.Client
}

// NewBestRatedCache 创建高分榜缓存
func NewBestRatedCache(client *redis.Client) *BestRatedCache {
	return &BestRatedCache{client: client}
}

// Get 读取缓存,未命中或出错时ok为false
func (c *BestRatedCache) Get(ctx context.Context) ([]*book.Book, bool) {
	data, err := c.client.Get(ctx, bestRatedKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.L().WithError(err).Warn("高分榜缓存读取失败")
		}
		return nil, false
	}

	var books []*book.Book
	if err := json.Unmarshal(data, &books); err != nil {
		logger.L().WithError(err).Warn("高分榜缓存数据损坏")
		return nil, false
	}

	return books, true
}

// Set 写入缓存
func (c *BestRatedCache) Set(ctx context.Context, books []*book.Book) {
	data, err := json.Marshal(books)
	if err != nil {
		logger.L().WithError(err).Warn("高分榜缓存序列化失败")
		return
	}

	if err := c.client.Set(ctx, bestRatedKey, data, bestRatedTTL).Err(); err != nil {
		logger.L().WithError(err).Warn("高分榜缓存写入失败")
	}
}

// Invalidate 失效缓存
// 创建、更新、删除、评分任何可能影响榜单的写操作后调用
func (c *BestRatedCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, bestRatedKey).Err(); err != nil {
		logger.L().WithError(err).Warn("高分榜缓存失效失败")
	}
}
