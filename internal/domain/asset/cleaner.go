package asset

import (
	"context"
	"sync"
	"time"

	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// Cleaner 异步资源清理器
// 设计说明:
// 1. 删除封面文件不阻塞用户请求:删除任务投递到channel,由后台
//    goroutine串行执行
// 2. 删除失败只记录日志并上报指标,不影响主流程(孤儿文件可以
//    通过离线扫描补偿清理)
// 3. Stop会排空队列中剩余任务后退出,保证每个失败路径的清理
//    至少被尝试一次
type Cleaner struct {
	store    Store
	tasks    chan string
	stopOnce sync.Once
	done     chan struct{}
}

// NewCleaner 创建并启动异步清理器
func NewCleaner(store Store, queueSize int) *Cleaner {
	if queueSize <= 0 {
		queueSize = 64
	}
	c := &Cleaner{
		store: store,
		tasks: make(chan string, queueSize),
		done:  make(chan struct{}),
	}
	go c.run()
	return c
}

// Release 异步删除一个资源(按存储文件名)
// 队列满时降级为同步删除,保证任务不丢失。
func (c *Cleaner) Release(name string) {
	if name == "" {
		return
	}
	select {
	case c.tasks <- name:
	default:
		c.deleteOne(name)
	}
}

// ReleaseRef 异步删除一个资源(按公开URL引用)
func (c *Cleaner) ReleaseRef(ref string) {
	c.Release(NameFromRef(ref))
}

// Stop 停止清理器,排空剩余任务
func (c *Cleaner) Stop() {
	c.stopOnce.Do(func() {
		close(c.tasks)
		<-c.done
	})
}

func (c *Cleaner) run() {
	defer close(c.done)
	for name := range c.tasks {
		c.deleteOne(name)
	}
}

func (c *Cleaner) deleteOne(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.store.Delete(ctx, name); err != nil {
		metrics.AssetCleanupFailedTotal.Inc()
		logger.L().WithError(err).WithField("asset", name).
			Warn("封面文件清理失败")
	}
}
