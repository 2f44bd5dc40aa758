package book

import (
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrMissingFields 必填字段缺失
	ErrMissingFields = apperrors.New(apperrors.ErrCodeInvalidParams, "标题、作者、年份、体裁均为必填项")

	// ErrInvalidYear 年份不合法
	ErrInvalidYear = apperrors.New(apperrors.ErrCodeInvalidParams, "年份必须为1-4位数字且不超过当前年份")

	// ErrMissingImage 创建图书必须上传封面
	ErrMissingImage = apperrors.New(apperrors.ErrCodeInvalidParams, "必须上传封面图片")

	// ErrInvalidGrade 评分超出范围
	ErrInvalidGrade = apperrors.New(apperrors.ErrCodeInvalidParams, "评分必须在0到5之间")

	// ErrDuplicateRating 同一用户重复评分
	ErrDuplicateRating = apperrors.New(apperrors.ErrCodeDuplicateRating, "您已经评过分了")

	// ErrForbidden 非所有者操作
	ErrForbidden = apperrors.New(apperrors.ErrCodeForbidden, "无权操作此图书")
)
