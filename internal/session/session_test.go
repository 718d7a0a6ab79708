package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chat-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLogoutNotifier struct {
	calls chan string
	err   error
}

func newFakeLogoutNotifier() *fakeLogoutNotifier {
	return &fakeLogoutNotifier{calls: make(chan string, 1)}
}

func (f *fakeLogoutNotifier) Logout(userID string) error {
	f.calls <- userID
	return f.err
}

func testUser() *model.User {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.User{
		ID:        "user_1700000000000_abc123def",
		Username:  "alice",
		Email:     "alice@example.com",
		CreatedAt: now,
		LastSeen:  now,
		IsOnline:  true,
	}
}

func newTestManager(t *testing.T) (*Manager, *Storage, *fakeLogoutNotifier) {
	t.Helper()
	storage := NewStorage(filepath.Join(t.TempDir(), "session.json"))
	notifier := newFakeLogoutNotifier()
	return NewManager(storage, notifier, zap.NewNop()), storage, notifier
}

func TestManager_InitialStateIsLoading(t *testing.T) {
	m, _, _ := newTestManager(t)

	snap := m.Snapshot()
	assert.True(t, snap.IsLoading)
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)
}

func TestManager_Load(t *testing.T) {
	t.Run("no saved session is anonymous", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		m.Load()

		snap := m.Snapshot()
		assert.False(t, snap.IsLoading)
		assert.False(t, snap.IsAuthenticated)
	})

	t.Run("saved session restores authenticated state", func(t *testing.T) {
		m, storage, _ := newTestManager(t)
		require.NoError(t, storage.Save(testUser()))

		m.Load()

		snap := m.Snapshot()
		assert.True(t, snap.IsAuthenticated)
		require.NotNil(t, snap.User)
		assert.Equal(t, "alice", snap.User.Username)
		assert.True(t, snap.User.CreatedAt.Equal(testUser().CreatedAt))
	})

	t.Run("unparseable session falls back to anonymous", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
		m := NewManager(NewStorage(path), nil, zap.NewNop())

		m.Load()

		snap := m.Snapshot()
		assert.False(t, snap.IsLoading)
		assert.False(t, snap.IsAuthenticated)
	})
}

func TestManager_LoginPersists(t *testing.T) {
	m, storage, _ := newTestManager(t)
	m.Load()

	m.Login(testUser())

	snap := m.Snapshot()
	assert.True(t, snap.IsAuthenticated)

	saved, err := storage.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "alice", saved.Username)
}

func TestManager_Logout(t *testing.T) {
	m, storage, notifier := newTestManager(t)
	m.Load()
	m.Login(testUser())

	m.Logout()

	snap := m.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)

	// 本地会话已清除
	saved, err := storage.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)

	// 服务端收到fire-and-forget通知
	select {
	case userID := <-notifier.calls:
		assert.Equal(t, testUser().ID, userID)
	case <-time.After(time.Second):
		t.Fatal("logout notification was never sent")
	}
}

func TestManager_LogoutNotifierFailureIsSwallowed(t *testing.T) {
	m, _, notifier := newTestManager(t)
	notifier.err = errors.New("server unreachable")
	m.Load()
	m.Login(testUser())

	m.Logout()

	select {
	case <-notifier.calls:
	case <-time.After(time.Second):
		t.Fatal("logout notification was never sent")
	}
	assert.False(t, m.Snapshot().IsAuthenticated)
}

func TestManager_LogoutWhenAnonymousIsNoop(t *testing.T) {
	m, _, notifier := newTestManager(t)
	m.Load()

	m.Logout()

	select {
	case <-notifier.calls:
		t.Fatal("no notification expected for anonymous logout")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_UpdateUser(t *testing.T) {
	t.Run("merges and re-persists when authenticated", func(t *testing.T) {
		m, storage, _ := newTestManager(t)
		m.Load()
		m.Login(testUser())

		avatar := "https://example.com/new.png"
		m.UpdateUser(model.UserPatch{Avatar: &avatar})

		snap := m.Snapshot()
		assert.Equal(t, avatar, snap.User.Avatar)
		// 未打补丁的字段保持原值
		assert.Equal(t, "alice", snap.User.Username)

		saved, err := storage.Load()
		require.NoError(t, err)
		assert.Equal(t, avatar, saved.Avatar)
	})

	t.Run("no-op when anonymous", func(t *testing.T) {
		m, storage, _ := newTestManager(t)
		m.Load()

		avatar := "https://example.com/new.png"
		m.UpdateUser(model.UserPatch{Avatar: &avatar})

		assert.Nil(t, m.Snapshot().User)
		saved, err := storage.Load()
		require.NoError(t, err)
		assert.Nil(t, saved)
	})
}

func TestManager_Subscribe(t *testing.T) {
	m, _, _ := newTestManager(t)

	var snaps []Snapshot
	unsubscribe := m.Subscribe(func(s Snapshot) {
		snaps = append(snaps, s)
	})

	m.Load()
	m.Login(testUser())

	require.Len(t, snaps, 2)
	assert.False(t, snaps[0].IsAuthenticated)
	assert.True(t, snaps[1].IsAuthenticated)

	unsubscribe()
	m.Logout()
	assert.Len(t, snaps, 2)
}
