package asset

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xiebiao/bookcatalog/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// unsafeChars 文件名清洗:保留字母、数字、下划线,其余替换为下划线
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Ingestor 封面图片接入管道
// 设计说明:
// 1. 清洗原始文件名 + 纳秒时间戳,保证存储文件名唯一且安全
// 2. 通过熔断器调用编解码器:转码持续失败时快速失败,避免每个
//    上传请求都消耗一次完整的解码尝试
// 3. 转码后写入Store;写入Store之后的任何失败路径由调用方负责
//    通过Cleaner释放已写入的文件
type Ingestor struct {
	store   Store
	codec   Codec
	breaker *circuitbreaker.CircuitBreaker
}

// NewIngestor 创建图片接入管道
func NewIngestor(store Store, codec Codec) *Ingestor {
	cb := circuitbreaker.NewCircuitBreaker("image-codec", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.L().WithField("breaker", name).
			Warnf("熔断器状态变化: %s -> %s", from, to)
	})

	return &Ingestor{store: store, codec: codec, breaker: cb}
}

// Ingest 接入一张封面图片
//
// 流程:
// 1. 无数据时为no-op,返回空名称和空引用(是否必须上传由调用方决定)
// 2. 生成唯一存储名:清洗后的文件名 + 纳秒时间戳 + 固定扩展名
// 3. 转码为固定格式/质量
// 4. 写入Store,返回存储名和公开URL
func (ig *Ingestor) Ingest(ctx context.Context, upload *Upload) (name string, ref string, err error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", "", nil
	}

	name = GenerateName(upload.Filename)

	var encoded []byte
	err = ig.breaker.Execute(func() error {
		var codecErr error
		encoded, codecErr = ig.codec.Transcode(upload.Data)
		return codecErr
	})
	if err != nil {
		metrics.ImageIngestFailedTotal.Inc()
		return "", "", apperrors.WrapWithCode(apperrors.ErrCodeImageProcess, err, "封面图片转码失败")
	}

	ref, err = ig.store.Put(ctx, name, encoded)
	if err != nil {
		metrics.ImageIngestFailedTotal.Inc()
		return "", "", apperrors.WrapWithCode(apperrors.ErrCodeImageProcess, err, "封面图片存储失败")
	}

	return name, ref, nil
}

// GenerateName 生成唯一存储文件名
// 清洗提示文件名(去扩展名、替换非法字符),拼接纳秒时间戳防碰撞
func GenerateName(hint string) string {
	base := hint
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" {
		base = "cover"
	}

	return fmt.Sprintf("%s_%d.jpg", base, time.Now().UnixNano())
}

// NameFromRef 从公开URL引用解析出存储文件名
// 引用格式: <baseURL>/<name>,直接取最后一段
func NameFromRef(ref string) string {
	if ref == "" {
		return ""
	}
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}
