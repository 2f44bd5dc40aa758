package book

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBook_SeedRating(t *testing.T) {
	b := NewBook(1, "Dune", "Herbert", 1965, "SF", "http://x/images/dune.jpg", 4)

	// 创建时评分集合恰好一条:创建者的种子评分
	require.Len(t, b.Ratings, 1)
	assert.Equal(t, uint(1), b.Ratings[0].VoterID)
	assert.Equal(t, 4, b.Ratings[0].Grade)
	assert.Equal(t, 4.0, b.AverageRating)
	assert.Equal(t, uint(1), b.OwnerID)
}

func TestBook_Validate(t *testing.T) {
	valid := func() *Book {
		return NewBook(1, "Dune", "Herbert", 1965, "SF", "ref", 4)
	}

	t.Run("合法实体", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("空白字段", func(t *testing.T) {
		for _, mutate := range []func(*Book){
			func(b *Book) { b.Title = "   " },
			func(b *Book) { b.Author = "" },
			func(b *Book) { b.Genre = "\t" },
		} {
			b := valid()
			mutate(b)
			assert.ErrorIs(t, b.Validate(), ErrMissingFields)
		}
	})

	t.Run("年份校验", func(t *testing.T) {
		b := valid()
		b.Year = 0
		assert.ErrorIs(t, b.Validate(), ErrInvalidYear)

		b.Year = time.Now().Year() + 1
		assert.ErrorIs(t, b.Validate(), ErrInvalidYear)

		b.Year = 12345
		assert.ErrorIs(t, b.Validate(), ErrInvalidYear)

		b.Year = time.Now().Year()
		assert.NoError(t, b.Validate())
	})
}

func TestBook_AddRating(t *testing.T) {
	t.Run("平均分保留2位小数", func(t *testing.T) {
		b := NewBook(1, "Dune", "Herbert", 1965, "SF", "ref", 4)

		// 第二人评5分: (4+5)/2 = 4.5
		require.NoError(t, b.AddRating(2, 5))
		assert.Equal(t, 4.5, b.AverageRating)

		// 第三人评3分: (4+5+3)/3 = 4.0
		require.NoError(t, b.AddRating(3, 3))
		assert.Equal(t, 4.0, b.AverageRating)

		// 第四人评0分: 12/4 = 3.0
		require.NoError(t, b.AddRating(4, 0))
		assert.Equal(t, 3.0, b.AverageRating)
	})

	t.Run("除不尽时四舍五入", func(t *testing.T) {
		b := NewBook(1, "Dune", "Herbert", 1965, "SF", "ref", 5)
		require.NoError(t, b.AddRating(2, 4))
		require.NoError(t, b.AddRating(3, 1))
		// (5+4+1)/3 = 3.333... → 3.33
		assert.Equal(t, 3.33, b.AverageRating)
	})

	t.Run("重复评分被拒绝且记录不变", func(t *testing.T) {
		b := NewBook(1, "Dune", "Herbert", 1965, "SF", "ref", 4)
		require.NoError(t, b.AddRating(2, 5))

		err := b.AddRating(2, 1)
		assert.ErrorIs(t, err, ErrDuplicateRating)
		assert.Len(t, b.Ratings, 2)
		assert.Equal(t, 4.5, b.AverageRating)

		// 创建者的种子评分同样占用名额
		err = b.AddRating(1, 5)
		assert.ErrorIs(t, err, ErrDuplicateRating)
	})

	t.Run("评分范围校验", func(t *testing.T) {
		b := NewBook(1, "Dune", "Herbert", 1965, "SF", "ref", 4)
		assert.ErrorIs(t, b.AddRating(2, 6), ErrInvalidGrade)
		assert.ErrorIs(t, b.AddRating(2, -1), ErrInvalidGrade)
		assert.Len(t, b.Ratings, 1)
	})
}

func TestBook_ApplyPatch(t *testing.T) {
	b := NewBook(1, "Dune", "Herbert", 1965, "SF", "ref", 4)

	title := "  Dune Messiah  "
	year := 1969
	b.ApplyPatch(Patch{Title: &title, Year: &year})

	// 提交的字段更新且去除空白,省略的字段保留原值
	assert.Equal(t, "Dune Messiah", b.Title)
	assert.Equal(t, 1969, b.Year)
	assert.Equal(t, "Herbert", b.Author)
	assert.Equal(t, "SF", b.Genre)

	// 评分聚合与所有者不受更新影响
	assert.Equal(t, uint(1), b.OwnerID)
	assert.Len(t, b.Ratings, 1)
	assert.Equal(t, 4.0, b.AverageRating)
}

func TestBook_IsOwnedBy(t *testing.T) {
	b := NewBook(7, "Dune", "Herbert", 1965, "SF", "ref", 4)
	assert.True(t, b.IsOwnedBy(7))
	assert.False(t, b.IsOwnedBy(8))
}
