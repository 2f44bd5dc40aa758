// Package imaging 提供封面图片的编解码实现
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// 注册PNG/GIF解码器,image.Decode按magic bytes自动识别格式
	_ "image/gif"
	_ "image/png"

	"github.com/xiebiao/bookcatalog/internal/domain/asset"
)

// JPEGCodec 固定质量JPEG编解码器
// 设计说明:
// 1. 实现domain/asset.Codec接口
// 2. 接受PNG/GIF/JPEG输入,统一转码为固定质量的JPEG
// 3. 转码同时起到内容校验作用:非图片数据在解码阶段即失败
type JPEGCodec struct {
	quality int
}

// NewJPEGCodec 创建编解码器,quality取值1-100
func NewJPEGCodec(quality int) *JPEGCodec {
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &JPEGCodec{quality: quality}
}

// Transcode 解码任意支持格式并重编码为JPEG
func (c *JPEGCodec) Transcode(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("编码JPEG失败(源格式%s): %w", format, err)
	}

	return buf.Bytes(), nil
}

var _ asset.Codec = (*JPEGCodec)(nil)
