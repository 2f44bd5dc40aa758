package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	t.Run("写入并删除文件", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocalStore(dir, "http://localhost:8080/images/")
		require.NoError(t, err)

		ref, err := store.Put(ctx, "cover_1.jpg", []byte("fake"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/images/cover_1.jpg", ref)

		data, err := os.ReadFile(filepath.Join(dir, "cover_1.jpg"))
		require.NoError(t, err)
		assert.Equal(t, []byte("fake"), data)

		require.NoError(t, store.Delete(ctx, "cover_1.jpg"))
		_, err = os.Stat(filepath.Join(dir, "cover_1.jpg"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("删除不存在的文件幂等", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir(), "http://x/images")
		require.NoError(t, err)
		assert.NoError(t, store.Delete(ctx, "ghost.jpg"))
	})

	t.Run("拒绝路径穿越", func(t *testing.T) {
		store, err := NewLocalStore(t.TempDir(), "http://x/images")
		require.NoError(t, err)

		_, err = store.Put(ctx, "../evil.jpg", []byte("x"))
		assert.Error(t, err)

		assert.Error(t, store.Delete(ctx, "a/b.jpg"))
	})

	t.Run("自动创建存储目录", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "images")
		_, err := NewLocalStore(dir, "http://x/images")
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}
