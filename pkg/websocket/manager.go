package websocket

import (
	"encoding/json"
	"sync"

	"chat-system/internal/model"
	"chat-system/pkg/response"

	"github.com/gorilla/websocket"
)

// Client 代表一个订阅在线状态的WebSocket连接
// Conn: WebSocket连接
// Send: 发送消息的通道

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// PresenceEvent 在线状态事件
// 登录/登出成功后广播给所有订阅者
type PresenceEvent struct {
	Type   string             `json:"type"`
	User   *response.UserInfo `json:"user"`
	Online bool               `json:"online"`
}

// Manager 管理所有在线状态订阅连接
// 并发安全，发送不及时的连接直接丢弃该条消息

type Manager struct {
	clients map[*Client]struct{}
	lock    sync.RWMutex
}

var manager = &Manager{
	clients: make(map[*Client]struct{}),
}

// GetManager 获取全局WebSocket管理器
func GetManager() *Manager {
	return manager
}

// AddClient 添加新连接
func (m *Manager) AddClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.clients[client] = struct{}{}
}

// RemoveClient 移除连接
func (m *Manager) RemoveClient(client *Client) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.clients[client]; ok {
		close(client.Send)
		delete(m.clients, client)
	}
}

// ClientCount 当前订阅连接数
func (m *Manager) ClientCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}

// Broadcast 向所有订阅者推送消息
func (m *Manager) Broadcast(msg []byte) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for client := range m.clients {
		select {
		case client.Send <- msg:
		default:
			// 发送缓冲已满，丢弃本条消息
		}
	}
}

// NotifyPresence 实现service.PresenceNotifier
// 将用户在线状态变化序列化后广播（密码字段已剥离）
func (m *Manager) NotifyPresence(user *model.User, online bool) {
	event := PresenceEvent{
		Type:   "presence",
		User:   response.FilterUserInfo(user),
		Online: online,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	m.Broadcast(data)
}
