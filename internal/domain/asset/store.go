package asset

import "context"

// Upload 上传的原始图片数据
// Filename仅作为生成存储文件名的提示,不直接用于存储路径
type Upload struct {
	Data     []byte
	Filename string
}

// Store 资源存储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(本地磁盘存储)
// 2. Put返回可公开访问的URL引用
// 3. 便于Mock测试,也便于未来切换到对象存储(如S3、OSS)
type Store interface {
	// Put 存储文件,返回公开访问URL
	Put(ctx context.Context, name string, data []byte) (ref string, err error)

	// Delete 删除文件
	Delete(ctx context.Context, name string) error
}

// Codec 图片编解码接口
// 将任意格式的图片转码为固定格式、固定质量的压缩图片
type Codec interface {
	Transcode(data []byte) ([]byte, error)
}
