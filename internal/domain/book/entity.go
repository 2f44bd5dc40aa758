package book

import (
	"math"
	"strings"
	"time"
)

// Rating 单条评分
// VoterID在一本书的评分集合内唯一(每个用户只能投一票)
type Rating struct {
	VoterID uint `json:"voter_id"`
	Grade   int  `json:"grade"`
}

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,评分集合作为聚合内部状态由实体方法维护
// 2. OwnerID在创建时取自认证调用者,之后不可变更(客户端提交的
//    owner字段一律丢弃)
// 3. ImageRef指向资源存储中唯一绑定的封面文件,创建后始终非空
// 4. AverageRating为派生字段,每次评分插入后重算,与Ratings保持一致
type Book struct {
	ID            uint
	OwnerID       uint     // 创建者用户ID,不可变
	Title         string   // 书名
	Author        string   // 作者
	Year          int      // 出版年份
	Genre         string   // 体裁
	ImageRef      string   // 封面图片URL
	Ratings       []Rating // 评分集合
	AverageRating float64  // 平均评分(保留2位小数)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBook 创建新图书(工厂方法)
// 创建时附带创建者本人的种子评分:评分集合恰好一条,平均分等于种子分
func NewBook(ownerID uint, title, author string, year int, genre, imageRef string, seedGrade int) *Book {
	now := time.Now()
	b := &Book{
		OwnerID:   ownerID,
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		Year:      year,
		Genre:     strings.TrimSpace(genre),
		ImageRef:  imageRef,
		Ratings:   []Rating{{VoterID: ownerID, Grade: seedGrade}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.recomputeAverage()
	return b
}

// Validate 校验实体字段(领域规则)
// 业务规则:
// - 标题、作者、体裁去除首尾空白后不能为空
// - 年份为1-4位数字,且不超过当前年份
func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" ||
		strings.TrimSpace(b.Author) == "" ||
		strings.TrimSpace(b.Genre) == "" {
		return ErrMissingFields
	}
	if b.Year < 1 || b.Year > 9999 || b.Year > time.Now().Year() {
		return ErrInvalidYear
	}
	return nil
}

// IsOwnedBy 检查图书是否由指定用户创建
// 所有权即简单的相等判断,不涉及角色层级
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.OwnerID == userID
}

// HasRatedBy 检查指定用户是否已评分
func (b *Book) HasRatedBy(voterID uint) bool {
	for _, r := range b.Ratings {
		if r.VoterID == voterID {
			return true
		}
	}
	return false
}

// AddRating 追加一条评分并重算平均分(领域行为)
// 业务规则:
// - 评分必须在0-5之间
// - 同一用户不能重复评分
func (b *Book) AddRating(voterID uint, grade int) error {
	if grade < 0 || grade > 5 {
		return ErrInvalidGrade
	}
	if b.HasRatedBy(voterID) {
		return ErrDuplicateRating
	}
	b.Ratings = append(b.Ratings, Rating{VoterID: voterID, Grade: grade})
	b.recomputeAverage()
	b.UpdatedAt = time.Now()
	return nil
}

// recomputeAverage 从评分集合重算平均分,四舍五入保留2位小数
// 始终从完整集合重算,避免增量维护产生的累积漂移
func (b *Book) recomputeAverage() {
	if len(b.Ratings) == 0 {
		b.AverageRating = 0
		return
	}
	sum := 0
	for _, r := range b.Ratings {
		sum += r.Grade
	}
	mean := float64(sum) / float64(len(b.Ratings))
	b.AverageRating = math.Round(mean*100) / 100
}

// Patch 部分更新值对象
// 每个可变字段一个可选指针:nil表示保留原值(显式合并,
// 避免误把未提交的字段覆盖为零值)
type Patch struct {
	Title  *string
	Author *string
	Year   *int
	Genre  *string
}

// ApplyPatch 将部分更新合并到实体
// OwnerID、Ratings、AverageRating不受此操作影响
func (b *Book) ApplyPatch(p Patch) {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.Year != nil {
		b.Year = *p.Year
	}
	if p.Genre != nil {
		b.Genre = strings.TrimSpace(*p.Genre)
	}
	b.UpdatedAt = time.Now()
}
