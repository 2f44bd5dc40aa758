package book

import (
	"context"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// RatingDTO 评分项DTO
type RatingDTO struct {
	VoterID uint `json:"voter_id"`
	Grade   int  `json:"grade"`
}

// BookDTO 图书响应DTO
// 应用层统一的输出格式,与HTTP层解耦
type BookDTO struct {
	ID            uint        `json:"id"`
	OwnerID       uint        `json:"owner_id"`
	Title         string      `json:"title"`
	Author        string      `json:"author"`
	Year          int         `json:"year"`
	Genre         string      `json:"genre"`
	ImageURL      string      `json:"image_url"`
	Ratings       []RatingDTO `json:"ratings"`
	AverageRating float64     `json:"average_rating"`
	CreatedAt     string      `json:"created_at"`
}

// toDTO 领域实体 → 响应DTO
func toDTO(b *book.Book) *BookDTO {
	ratings := make([]RatingDTO, len(b.Ratings))
	for i, r := range b.Ratings {
		ratings[i] = RatingDTO{VoterID: r.VoterID, Grade: r.Grade}
	}
	return &BookDTO{
		ID:            b.ID,
		OwnerID:       b.OwnerID,
		Title:         b.Title,
		Author:        b.Author,
		Year:          b.Year,
		Genre:         b.Genre,
		ImageURL:      b.ImageRef,
		Ratings:       ratings,
		AverageRating: b.AverageRating,
		CreatedAt:     b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toDTOList(books []*book.Book) []*BookDTO {
	out := make([]*BookDTO, len(books))
	for i, b := range books {
		out[i] = toDTO(b)
	}
	return out
}

// TopRatedCache 高分榜缓存接口(由redis实现)
// 缓存未命中或读写出错时直接回源数据库,不影响主流程
type TopRatedCache interface {
	// Get 读取缓存,未命中时ok为false
	Get(ctx context.Context) (books []*book.Book, ok bool)

	// Set 写入缓存
	Set(ctx context.Context, books []*book.Book)

	// Invalidate 失效缓存(任何可能影响榜单的写操作后调用)
	Invalidate(ctx context.Context)
}
