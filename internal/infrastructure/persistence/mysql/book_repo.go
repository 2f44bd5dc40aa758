package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 数据库错误统一包装为存储错误(50001),不向上暴露驱动细节
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书,回填自增ID
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.WrapWithCode(apperrors.ErrCodeStorageError, err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.db.WithContext(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeStorageError, err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// Replace 全文档替换(按ID)
// 评分集合与平均分作为记录的一部分整条写回
func (r *bookRepository) Replace(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	model.ID = b.ID
	model.CreatedAt = b.CreatedAt

	// Save按主键更新所有字段
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return apperrors.WrapWithCode(apperrors.ErrCodeStorageError, result.Error, "更新图书失败")
	}

	b.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 删除图书(软删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&BookModel{}, id)

	if result.Error != nil {
		return apperrors.WrapWithCode(apperrors.ErrCodeStorageError, result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// FindAll 查询全部图书(无排序全量扫描)
func (r *bookRepository) FindAll(ctx context.Context) ([]*book.Book, error) {
	var models []BookModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeStorageError, err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// FindTopRated 按平均评分降序查询前limit本
// 同分按ID升序,保证榜单结果稳定
func (r *bookRepository) FindTopRated(ctx context.Context, limit int) ([]*book.Book, error) {
	var models []BookModel
	err := r.db.WithContext(ctx).
		Order("average_rating DESC, id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapWithCode(apperrors.ErrCodeStorageError, err, "查询高分榜失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

// toBookModel 领域实体 → GORM模型(不含ID与时间戳)
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		OwnerID:       b.OwnerID,
		Title:         b.Title,
		Author:        b.Author,
		Year:          b.Year,
		Genre:         b.Genre,
		ImageRef:      b.ImageRef,
		Ratings:       b.Ratings,
		AverageRating: b.AverageRating,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:            model.ID,
		OwnerID:       model.OwnerID,
		Title:         model.Title,
		Author:        model.Author,
		Year:          model.Year,
		Genre:         model.Genre,
		ImageRef:      model.ImageRef,
		Ratings:       model.Ratings,
		AverageRating: model.AverageRating,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
