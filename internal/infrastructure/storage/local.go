// Package storage 提供封面文件的本地磁盘存储实现
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xiebiao/bookcatalog/internal/domain/asset"
)

// LocalStore 本地磁盘资源存储
// 设计说明:
// 1. 实现domain/asset.Store接口
// 2. 文件直接写入配置目录,由HTTP层以静态路由对外暴露
// 3. 文件名由接入管道生成(已清洗),这里再做一次路径穿越防护
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore 创建本地存储,目录不存在时自动创建
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put 存储文件,返回公开访问URL
func (s *LocalStore) Put(_ context.Context, name string, data []byte) (string, error) {
	path, err := s.safePath(name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// Delete 删除文件
// 文件不存在视为删除成功(幂等,清理任务可安全重试)
func (s *LocalStore) Delete(_ context.Context, name string) error {
	path, err := s.safePath(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}

// safePath 拼接存储路径,拒绝越出存储目录的文件名
func (s *LocalStore) safePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("非法的文件名: %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

var _ asset.Store = (*LocalStore)(nil)
