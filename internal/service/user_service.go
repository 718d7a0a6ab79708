package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"chat-system/internal/model"
	"chat-system/internal/repository"
)

// emailPattern 宽松的邮箱格式：非空白+ "@" 非空白+ "." 非空白+
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// PresenceNotifier 在线状态变化通知
// 登录/登出成功后由服务层调用，用于向外推送在线状态
type PresenceNotifier interface {
	NotifyPresence(user *model.User, online bool)
}

// UserService 账户业务层：注册、登录、登出、用户目录
// 无状态，每个操作先校验再委托给repository
type UserService struct {
	repo     *repository.UserRepository
	notifier PresenceNotifier
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// SetPresenceNotifier 注入在线状态通知器，nil时不推送
func (s *UserService) SetPresenceNotifier(n PresenceNotifier) {
	s.notifier = n
}

// Register 注册新用户
// 校验顺序：必填 → 用户名长度 → 邮箱格式 → 密码长度 → 重名检查
func (s *UserService) Register(username, email, password, avatar string) (*model.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, validationError("Username, email, and password are required")
	}
	if len(strings.TrimSpace(username)) < 3 {
		return nil, validationError("Username must be at least 3 characters")
	}
	if !emailPattern.MatchString(email) {
		return nil, validationError("Invalid email format")
	}
	if len(password) < 6 {
		return nil, validationError("Password must be at least 6 characters")
	}

	exists, err := s.repo.Exists(username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserConflict
	}

	now := time.Now()
	user := &model.User{
		ID:        s.repo.NewID(),
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		Password:  password, // 占位实现：明文存储，无任何安全性
		Avatar:    avatar,
		CreatedAt: now,
		LastSeen:  now,
		IsOnline:  true,
	}

	stored, err := s.repo.Insert(user)
	if err != nil {
		return nil, err
	}

	s.notifyPresence(stored, true)
	return stored, nil
}

// Login 用户登录
// 用户不存在与密码错误返回同一错误，登录成功后置为在线并刷新LastSeen
func (s *UserService) Login(username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, validationError("Username and password are required")
	}

	user, err := s.repo.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// 占位实现：明文逐字比较，无任何安全性
	if user.Password != password {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	online := true
	updated, err := s.repo.Update(user.ID, model.UserPatch{IsOnline: &online, LastSeen: &now})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// 查找和更新之间记录消失，按存储故障处理
		return nil, fmt.Errorf("更新在线状态失败: 用户 %s 已不存在", user.ID)
	}

	s.notifyPresence(updated, true)
	return updated, nil
}

// Logout 用户登出
// 状态翻转尽力而为：记录存在即视为成功，更新未命中不报错
func (s *UserService) Logout(userID string) error {
	if userID == "" {
		return validationError("User ID is required")
	}

	user, err := s.repo.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	now := time.Now()
	online := false
	updated, err := s.repo.Update(userID, model.UserPatch{IsOnline: &online, LastSeen: &now})
	if err != nil {
		return err
	}

	if updated == nil {
		updated = user
		updated.IsOnline = false
		updated.LastSeen = now
	}
	s.notifyPresence(updated, false)
	return nil
}

// ListUsers 用户目录，直接透传完整集合
func (s *UserService) ListUsers() ([]model.User, error) {
	return s.repo.ListAll()
}

func (s *UserService) notifyPresence(user *model.User, online bool) {
	if s.notifier != nil {
		s.notifier.NotifyPresence(user, online)
	}
}
