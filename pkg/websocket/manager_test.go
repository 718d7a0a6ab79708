package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"chat-system/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return &Manager{clients: make(map[*Client]struct{})}
}

func TestManager_Broadcast(t *testing.T) {
	m := newTestManager()

	a := &Client{Send: make(chan []byte, 1)}
	b := &Client{Send: make(chan []byte, 1)}
	m.AddClient(a)
	m.AddClient(b)
	require.Equal(t, 2, m.ClientCount())

	m.Broadcast([]byte("hello"))

	assert.Equal(t, []byte("hello"), <-a.Send)
	assert.Equal(t, []byte("hello"), <-b.Send)
}

func TestManager_BroadcastDropsOnFullBuffer(t *testing.T) {
	m := newTestManager()

	c := &Client{Send: make(chan []byte, 1)}
	m.AddClient(c)

	m.Broadcast([]byte("first"))
	m.Broadcast([]byte("second")) // 缓冲已满，该条被丢弃

	assert.Equal(t, []byte("first"), <-c.Send)
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_RemoveClientClosesChannel(t *testing.T) {
	m := newTestManager()

	c := &Client{Send: make(chan []byte, 1)}
	m.AddClient(c)
	m.RemoveClient(c)

	assert.Equal(t, 0, m.ClientCount())
	_, open := <-c.Send
	assert.False(t, open)

	// 重复移除不会panic
	m.RemoveClient(c)
}

func TestManager_NotifyPresenceStripsPassword(t *testing.T) {
	m := newTestManager()

	c := &Client{Send: make(chan []byte, 1)}
	m.AddClient(c)

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m.NotifyPresence(&model.User{
		ID:        "user_1700000000000_abc123def",
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "topsecret",
		CreatedAt: now,
		LastSeen:  now,
		IsOnline:  true,
	}, true)

	raw := <-c.Send
	assert.NotContains(t, string(raw), "topsecret")

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "presence", event["type"])
	assert.Equal(t, true, event["online"])

	user := event["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")
}
