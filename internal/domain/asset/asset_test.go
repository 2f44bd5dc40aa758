package asset

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// 接入/清理失败路径会递增指标，测试前需要完成注册
func TestMain(m *testing.M) {
	metrics.InitMetrics()
	os.Exit(m.Run())
}

// fakeStore 内存Store,用于单元测试
type fakeStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	putErr  error
	delErr  error
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (s *fakeStore) Put(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return "", s.putErr
	}
	s.files[name] = data
	return "http://localhost:8080/images/" + name, nil
}

func (s *fakeStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.files, name)
	s.deleted = append(s.deleted, name)
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// fakeCodec 直通编解码器
type fakeCodec struct {
	err error
}

func (c *fakeCodec) Transcode(data []byte) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return data, nil
}

func TestIngestor_Ingest(t *testing.T) {
	t.Run("成功接入图片", func(t *testing.T) {
		store := newFakeStore()
		ig := NewIngestor(store, &fakeCodec{})

		name, ref, err := ig.Ingest(context.Background(), &Upload{
			Data:     []byte("fake-image-bytes"),
			Filename: "mon livre!.png",
		})
		require.NoError(t, err)

		// 文件名已清洗:只保留字母数字下划线
		assert.True(t, strings.HasPrefix(name, "mon_livre__"), "实际文件名: %s", name)
		assert.True(t, strings.HasSuffix(name, ".jpg"))
		assert.Equal(t, "http://localhost:8080/images/"+name, ref)
		assert.Equal(t, 1, store.count())
	})

	t.Run("空数据为no-op", func(t *testing.T) {
		store := newFakeStore()
		ig := NewIngestor(store, &fakeCodec{})

		name, ref, err := ig.Ingest(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, name)
		assert.Empty(t, ref)
		assert.Equal(t, 0, store.count())

		name, ref, err = ig.Ingest(context.Background(), &Upload{Filename: "x.png"})
		require.NoError(t, err)
		assert.Empty(t, name)
		assert.Empty(t, ref)
	})

	t.Run("转码失败不写入Store", func(t *testing.T) {
		store := newFakeStore()
		ig := NewIngestor(store, &fakeCodec{err: errors.New("解码失败")})

		_, _, err := ig.Ingest(context.Background(), &Upload{
			Data:     []byte("not-an-image"),
			Filename: "bad.png",
		})
		require.Error(t, err)
		assert.Equal(t, 0, store.count(), "转码失败不应留下孤儿文件")
	})

	t.Run("存储失败返回错误", func(t *testing.T) {
		store := newFakeStore()
		store.putErr = errors.New("磁盘已满")
		ig := NewIngestor(store, &fakeCodec{})

		_, _, err := ig.Ingest(context.Background(), &Upload{
			Data:     []byte("fake-image-bytes"),
			Filename: "cover.png",
		})
		require.Error(t, err)
	})
}

func TestGenerateName(t *testing.T) {
	// 同名文件两次生成的存储名不同(时间戳防碰撞)
	a := GenerateName("cover.png")
	b := GenerateName("cover.png")
	assert.NotEqual(t, a, b)

	// 无提示文件名时使用默认前缀
	assert.True(t, strings.HasPrefix(GenerateName(""), "cover_"))

	// 特殊字符全部替换
	name := GenerateName("../../etc/passwd")
	assert.False(t, strings.Contains(name, "/"))
	assert.False(t, strings.Contains(name, ".."))
}

func TestNameFromRef(t *testing.T) {
	assert.Equal(t, "cover_123.jpg", NameFromRef("http://localhost:8080/images/cover_123.jpg"))
	assert.Equal(t, "cover_123.jpg", NameFromRef("cover_123.jpg"))
	assert.Equal(t, "", NameFromRef(""))
}

func TestCleaner(t *testing.T) {
	t.Run("异步删除资源", func(t *testing.T) {
		store := newFakeStore()
		_, _ = store.Put(context.Background(), "a.jpg", []byte("x"))

		cleaner := NewCleaner(store, 8)
		cleaner.ReleaseRef("http://localhost:8080/images/a.jpg")
		cleaner.Stop()

		assert.Equal(t, 0, store.count())
		assert.Equal(t, []string{"a.jpg"}, store.deleted)
	})

	t.Run("空引用忽略", func(t *testing.T) {
		store := newFakeStore()
		cleaner := NewCleaner(store, 8)
		cleaner.Release("")
		cleaner.Stop()
		assert.Empty(t, store.deleted)
	})

	t.Run("删除失败不panic", func(t *testing.T) {
		store := newFakeStore()
		store.delErr = errors.New("文件被占用")
		cleaner := NewCleaner(store, 8)
		cleaner.Release("b.jpg")
		cleaner.Stop()
	})
}
