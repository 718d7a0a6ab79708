package session

import (
	"sync"

	"chat-system/internal/model"

	"go.uber.org/zap"
)

// State 会话镜像状态
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

// LogoutNotifier 登出时尽力而为地通知服务端
type LogoutNotifier interface {
	Logout(userID string) error
}

// Snapshot 会话状态的只读快照
type Snapshot struct {
	User            *model.User
	IsLoading       bool
	IsAuthenticated bool
}

// Manager 当前用户的会话镜像
// 持有"当前用户"状态并同步到本地存储，由UI层在启动时显式构造
// 状态机：Loading → Anonymous | Authenticated
type Manager struct {
	mu       sync.RWMutex
	state    State
	user     *model.User
	storage  *Storage
	notifier LogoutNotifier
	log      *zap.Logger

	nextSub int
	subs    map[int]func(Snapshot)
}

// NewManager 构造会话镜像，初始状态为Loading
// notifier可为nil（登出时不通知服务端）
func NewManager(storage *Storage, notifier LogoutNotifier, log *zap.Logger) *Manager {
	return &Manager{
		state:    StateLoading,
		storage:  storage,
		notifier: notifier,
		log:      log,
		subs:     make(map[int]func(Snapshot)),
	}
}

// Load 启动时从本地存储恢复会话，唯一的启动挂起点
// 有可解析的记录则进入Authenticated，否则进入Anonymous
func (m *Manager) Load() {
	user, err := m.storage.Load()
	if err != nil {
		// 无法解析的会话按匿名处理
		m.log.Warn("恢复本地会话失败", zap.Error(err))
		user = nil
	}

	m.mu.Lock()
	m.user = user
	if user != nil {
		m.state = StateAuthenticated
	} else {
		m.state = StateAnonymous
	}
	m.mu.Unlock()

	m.notifySubscribers()
}

// Login 进入Authenticated并持久化用户记录
func (m *Manager) Login(user *model.User) {
	m.mu.Lock()
	u := *user
	m.user = &u
	m.state = StateAuthenticated
	m.mu.Unlock()

	if err := m.storage.Save(user); err != nil {
		m.log.Warn("保存本地会话失败", zap.Error(err))
	}
	m.notifySubscribers()
}

// Logout 退出登录
// 服务端通知为fire-and-forget：失败只记日志，不影响本地状态清理
func (m *Manager) Logout() {
	m.mu.Lock()
	user := m.user
	m.user = nil
	m.state = StateAnonymous
	m.mu.Unlock()

	if user != nil && m.notifier != nil {
		userID := user.ID
		go func() {
			if err := m.notifier.Logout(userID); err != nil {
				m.log.Warn("通知服务端登出失败",
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
		}()
	}

	if err := m.storage.Clear(); err != nil {
		m.log.Warn("清除本地会话失败", zap.Error(err))
	}
	m.notifySubscribers()
}

// UpdateUser 合并字段到当前用户并重新持久化
// 仅在Authenticated状态下有效，其他状态为no-op
func (m *Manager) UpdateUser(patch model.UserPatch) {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.user == nil {
		m.mu.Unlock()
		return
	}
	patch.Apply(m.user)
	updated := *m.user
	m.mu.Unlock()

	if err := m.storage.Save(&updated); err != nil {
		m.log.Warn("保存本地会话失败", zap.Error(err))
	}
	m.notifySubscribers()
}

// Snapshot 当前状态的只读快照
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Subscribe 订阅状态变化，返回取消订阅函数
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	var user *model.User
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return Snapshot{
		User:            user,
		IsLoading:       m.state == StateLoading,
		IsAuthenticated: m.state == StateAuthenticated,
	}
}

func (m *Manager) notifySubscribers() {
	m.mu.RLock()
	snap := m.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}
