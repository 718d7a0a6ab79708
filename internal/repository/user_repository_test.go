package repository

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chat-system/internal/model"
	"chat-system/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *UserRepository {
	t.Helper()
	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return NewUserRepository(s)
}

func seedUser(t *testing.T, r *UserRepository, username, email string) *model.User {
	t.Helper()
	now := time.Now()
	user, err := r.Insert(&model.User{
		ID:        r.NewID(),
		Username:  username,
		Email:     email,
		Password:  "secret123",
		CreatedAt: now,
		LastSeen:  now,
		IsOnline:  true,
	})
	require.NoError(t, err)
	return user
}

func TestUserRepository_FindByUsername(t *testing.T) {
	r := newTestRepository(t)
	seedUser(t, r, "Alice", "alice@example.com")

	t.Run("case-insensitive match", func(t *testing.T) {
		for _, name := range []string{"Alice", "alice", "ALICE"} {
			got, err := r.FindByUsername(name)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Alice", got.Username)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		got, err := r.FindByUsername("nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	r := newTestRepository(t)
	seedUser(t, r, "alice", "Alice@Example.com")

	got, err := r.FindByEmail("alice@example.COM")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice@Example.com", got.Email)
}

func TestUserRepository_FindByID(t *testing.T) {
	r := newTestRepository(t)
	user := seedUser(t, r, "alice", "alice@example.com")

	got, err := r.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.Username, got.Username)

	got, err = r.FindByID("user_0_missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_Exists(t *testing.T) {
	r := newTestRepository(t)
	seedUser(t, r, "alice", "alice@example.com")

	tests := []struct {
		name     string
		username string
		email    string
		want     bool
	}{
		{"username hit", "ALICE", "other@example.com", true},
		{"email hit", "other", "ALICE@EXAMPLE.COM", true},
		{"both hit", "alice", "alice@example.com", true},
		{"neither", "bob", "bob@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Exists(tt.username, tt.email)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	r := newTestRepository(t)
	user := seedUser(t, r, "alice", "alice@example.com")

	t.Run("merges only non-nil fields", func(t *testing.T) {
		online := false
		seen := time.Now().Add(time.Hour)
		updated, err := r.Update(user.ID, model.UserPatch{IsOnline: &online, LastSeen: &seen})
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.False(t, updated.IsOnline)
		assert.True(t, updated.LastSeen.Equal(seen))
		// 未打补丁的字段保持原值
		assert.Equal(t, "alice", updated.Username)
		assert.Equal(t, "secret123", updated.Password)

		got, err := r.FindByID(user.ID)
		require.NoError(t, err)
		assert.False(t, got.IsOnline)
	})

	t.Run("unknown id returns nil", func(t *testing.T) {
		online := true
		updated, err := r.Update("user_0_missing", model.UserPatch{IsOnline: &online})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestUserRepository_Remove(t *testing.T) {
	r := newTestRepository(t)
	user := seedUser(t, r, "alice", "alice@example.com")
	seedUser(t, r, "bob", "bob@example.com")

	removed, err := r.Remove(user.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	got, err := r.FindByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := r.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	removed, err = r.Remove(user.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUserRepository_NewID(t *testing.T) {
	r := newTestRepository(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := r.NewID()
		assert.True(t, strings.HasPrefix(id, "user_"))
		parts := strings.Split(id, "_")
		require.Len(t, parts, 3)
		assert.Len(t, parts[2], 9)
		seen[id] = true
	}
	// 毫秒时间戳+随机后缀，100个ID内撞车说明生成器坏了
	assert.Len(t, seen, 100)
}
