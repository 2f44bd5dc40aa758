package dto

import "encoding/json"

// BookPayload 创建图书时multipart表单中"book"字段的JSON内容
// 创建请求格式: multipart/form-data
//   - book:  JSON字符串（本结构）
//   - image: 封面文件（必填）
type BookPayload struct {
	Title  string `json:"title" binding:"required,max=200" example:"L'Étranger"`
	Author string `json:"author" binding:"required,max=100" example:"Albert Camus"`
	Year   int    `json:"year" binding:"required" example:"1942"`
	Genre  string `json:"genre" binding:"required,max=100" example:"Roman"`
	Grade  int    `json:"grade" binding:"min=0,max=5" example:"4"` // 创建者的初始评分
}

// UpdateBookPayload 更新图书请求
// 所有字段可选，只更新传入的字段；封面通过multipart的image字段携带
type UpdateBookPayload struct {
	Title  *string `json:"title" binding:"omitempty,max=200" example:"L'Étranger"`
	Author *string `json:"author" binding:"omitempty,max=100" example:"Albert Camus"`
	Year   *int    `json:"year" binding:"omitempty" example:"1942"`
	Genre  *string `json:"genre" binding:"omitempty,max=100" example:"Roman"`
}

// RateBookRequest 评分请求
// Grade用指针区分"传了0分"和"没传"
type RateBookRequest struct {
	Grade *int `json:"grade" binding:"required" example:"5"`
}

// ParseBookPayload 解析multipart中的book JSON字段
func ParseBookPayload(raw string) (*BookPayload, error) {
	var payload BookPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ParseUpdateBookPayload 解析更新请求的JSON内容
func ParseUpdateBookPayload(raw []byte) (*UpdateBookPayload, error) {
	var payload UpdateBookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
