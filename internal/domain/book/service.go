package book

import (
	"context"
	"time"

	"github.com/xiebiao/bookcatalog/internal/domain/asset"
	"github.com/xiebiao/bookcatalog/pkg/saga"
)

// AssetIngestor 封面图片接入(由asset.Ingestor实现)
type AssetIngestor interface {
	Ingest(ctx context.Context, upload *asset.Upload) (name string, ref string, err error)
}

// AssetReleaser 封面资源异步释放(由asset.Cleaner实现)
// 释放是fire-and-forget:失败由释放器记录日志,不回传给调用方
type AssetReleaser interface {
	Release(name string)
	ReleaseRef(ref string)
}

// CreateFields 创建图书的输入字段
// Grade为创建者的种子评分,创建后评分集合恰好包含这一条
type CreateFields struct {
	Title  string
	Author string
	Year   int
	Genre  string
	Grade  int
}

// Service 图书生命周期领域服务接口
// 设计说明:
// 1. 封装图书记录、封面资源、评分聚合三者间的编排规则
// 2. 校验先于图片接入:校验或权限失败的请求不会产生孤儿文件;
//    图片接入之后的失败路径必须释放已写入的文件
// 3. 评分提交、封面替换为读-改-写流程,未加乐观锁:同一记录上的
//    并发写以后写为准。需要更强一致性时应在Replace上引入版本号
//    条件更新
type Service interface {
	// CreateBook 创建图书
	// 业务规则:
	// - 标题/作者/年份/体裁必填,封面图片必传
	// - 种子评分0-5
	// - OwnerID取认证调用者,忽略载荷中的owner字段
	// - 记录写入失败时释放已接入的封面
	CreateBook(ctx context.Context, callerID uint, fields CreateFields, upload *asset.Upload) (*Book, error)

	// GetBook 根据ID获取图书(公开读,无需鉴权)
	GetBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 查询全部图书
	ListBooks(ctx context.Context) ([]*Book, error)

	// ListTopRated 按平均评分降序查询前limit本
	ListTopRated(ctx context.Context, limit int) ([]*Book, error)

	// UpdateBook 部分更新图书
	// 业务规则:
	// - 仅所有者可修改;载荷中省略的字段保留原值
	// - 合并后按创建时的规则重新校验
	// - 新封面接入成功后才释放旧封面;记录写入失败时释放新封面
	// - OwnerID、Ratings、AverageRating不受此操作影响
	UpdateBook(ctx context.Context, callerID, id uint, patch Patch, upload *asset.Upload) (*Book, error)

	// DeleteBook 删除图书
	// 业务规则:仅所有者可删除;封面释放为尽力而为,失败不阻断记录删除
	DeleteBook(ctx context.Context, callerID, id uint) error

	// RateBook 提交评分
	// 业务规则:评分0-5;每个用户对每本书只能评一次(所有者也可评分,
	// 但创建时的种子评分已占用其名额);成功后重算平均分并整条写回
	RateBook(ctx context.Context, callerID, id uint, grade int) (*Book, error)
}

// service 领域服务实现
type service struct {
	repo     Repository
	ingestor AssetIngestor
	releaser AssetReleaser
}

// NewService 创建图书生命周期领域服务
func NewService(repo Repository, ingestor AssetIngestor, releaser AssetReleaser) Service {
	return &service{repo: repo, ingestor: ingestor, releaser: releaser}
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, callerID uint, fields CreateFields, upload *asset.Upload) (*Book, error) {
	// 1. 种子评分范围校验
	if fields.Grade < 0 || fields.Grade > 5 {
		return nil, ErrInvalidGrade
	}

	// 2. 封面必传
	if upload == nil || len(upload.Data) == 0 {
		return nil, ErrMissingImage
	}

	// 3. 字段校验(先于图片接入,校验失败不产生文件)
	b := NewBook(callerID, fields.Title, fields.Author, fields.Year, fields.Genre, "", fields.Grade)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	// 4. Saga编排:接入封面 → 写入记录
	// 记录写入失败时补偿动作释放已写入的封面,不留孤儿文件
	var assetName string
	sg := saga.NewSaga(30 * time.Second)
	sg.AddStep("接入封面",
		func(ctx context.Context) error {
			name, ref, err := s.ingestor.Ingest(ctx, upload)
			if err != nil {
				return err
			}
			assetName = name
			b.ImageRef = ref
			return nil
		},
		func(ctx context.Context) error {
			s.releaser.Release(assetName)
			return nil
		},
	)
	sg.AddStep("写入记录",
		func(ctx context.Context) error {
			return s.repo.Create(ctx, b)
		},
		nil,
	)
	if err := sg.Execute(ctx); err != nil {
		return nil, err
	}

	return b, nil
}

// GetBook 根据ID获取图书
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 查询全部图书
func (s *service) ListBooks(ctx context.Context) ([]*Book, error) {
	return s.repo.FindAll(ctx)
}

// ListTopRated 按平均评分降序查询前limit本
func (s *service) ListTopRated(ctx context.Context, limit int) ([]*Book, error) {
	if limit <= 0 {
		limit = 3
	}
	return s.repo.FindTopRated(ctx, limit)
}

// UpdateBook 部分更新图书
func (s *service) UpdateBook(ctx context.Context, callerID, id uint, patch Patch, upload *asset.Upload) (*Book, error) {
	// 1. 查询图书
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 2. 权限检查:只有创建者可以修改
	// 图片接入在校验之后,被拒绝的请求不会产生待清理的文件
	if !b.IsOwnedBy(callerID) {
		return nil, ErrForbidden
	}

	// 3. 合并部分更新并重新校验
	b.ApplyPatch(patch)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	// 4. 有新封面:先接入新封面,写回成功后再释放旧封面
	if upload != nil && len(upload.Data) > 0 {
		newName, newRef, err := s.ingestor.Ingest(ctx, upload)
		if err != nil {
			return nil, err
		}

		oldRef := b.ImageRef
		b.ImageRef = newRef

		if err := s.repo.Replace(ctx, b); err != nil {
			// 写回失败释放新封面,旧封面仍被记录引用
			s.releaser.Release(newName)
			return nil, err
		}

		s.releaser.ReleaseRef(oldRef)
		return b, nil
	}

	// 5. 无新封面:直接写回合并结果
	if err := s.repo.Replace(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, callerID, id uint) error {
	// 1. 查询图书
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	// 2. 权限检查
	if !b.IsOwnedBy(callerID) {
		return ErrForbidden
	}

	// 3. 释放封面(异步尽力而为,失败不阻断记录删除)
	s.releaser.ReleaseRef(b.ImageRef)

	// 4. 删除记录
	return s.repo.Delete(ctx, id)
}

// RateBook 提交评分
func (s *service) RateBook(ctx context.Context, callerID, id uint, grade int) (*Book, error) {
	// 1. 评分范围校验(先于查询)
	if grade < 0 || grade > 5 {
		return nil, ErrInvalidGrade
	}

	// 2. 查询图书
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. 追加评分并重算平均分(重复评分在此拒绝,记录不变)
	if err := b.AddRating(callerID, grade); err != nil {
		return nil, err
	}

	// 4. 整条写回
	if err := s.repo.Replace(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}
