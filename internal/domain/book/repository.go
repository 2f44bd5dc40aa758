package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. Replace为全文档替换:评分追加、封面替换等读-改-写流程
//    以整条记录写回(并发评分竞争见Service说明)
type Repository interface {
	// Create 创建图书记录,回填自增ID
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// Replace 全文档替换(按ID)
	Replace(ctx context.Context, book *Book) error

	// Delete 删除图书记录
	Delete(ctx context.Context, id uint) error

	// FindAll 查询全部图书(无排序全量扫描)
	FindAll(ctx context.Context) ([]*Book, error)

	// FindTopRated 按平均评分降序查询前limit本
	// 平均分相同时按ID升序,保证结果稳定
	FindTopRated(ctx context.Context, limit int) ([]*Book, error)
}
