package asset

import (
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 资源领域错误定义
var (
	// ErrImageProcess 图片转码或存储失败
	ErrImageProcess = apperrors.New(apperrors.ErrCodeImageProcess, "封面图片处理失败")

	// ErrEmptyImage 图片数据为空
	ErrEmptyImage = apperrors.New(apperrors.ErrCodeInvalidParams, "图片数据为空")
)
