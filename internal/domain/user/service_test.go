package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

type fakeRepo struct {
	byEmail map[string]*User
	nextID  uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: make(map[string]*User), nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return apperrors.ErrEmailDuplicate
	}
	u.ID = r.nextID
	r.nextID++
	r.byEmail[u.Email] = u
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uint) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("成功注册", func(t *testing.T) {
		svc := NewService(newFakeRepo())

		u, err := svc.Register(ctx, "reader@example.com", "password123")
		require.NoError(t, err)
		assert.NotZero(t, u.ID)
		assert.Equal(t, "reader@example.com", u.Email)
		// 密码已加密，不等于明文
		assert.NotEqual(t, "password123", u.Password)
	})

	t.Run("邮箱格式不正确", func(t *testing.T) {
		svc := NewService(newFakeRepo())
		_, err := svc.Register(ctx, "not-an-email", "password123")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, apperrors.GetAppError(err).Code)
	})

	t.Run("密码强度不足", func(t *testing.T) {
		svc := NewService(newFakeRepo())

		for _, pwd := range []string{"short1", "onlyletters", "12345678"} {
			_, err := svc.Register(ctx, "reader@example.com", pwd)
			assert.ErrorIs(t, err, apperrors.ErrWeakPassword, "密码: %s", pwd)
		}
	})

	t.Run("邮箱重复", func(t *testing.T) {
		svc := NewService(newFakeRepo())
		_, err := svc.Register(ctx, "reader@example.com", "password123")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "reader@example.com", "password456")
		assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	_, err := svc.Register(ctx, "reader@example.com", "password123")
	require.NoError(t, err)

	t.Run("成功登录", func(t *testing.T) {
		u, err := svc.Login(ctx, "reader@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "reader@example.com", u.Email)
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := svc.Login(ctx, "reader@example.com", "wrongpass1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@example.com", "password123")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
