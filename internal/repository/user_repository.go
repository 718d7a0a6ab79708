package repository

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"chat-system/internal/model"
	"chat-system/internal/store"
)

// errNoChange 变更闭包内部使用：目标记录不存在，跳过写盘
var errNoChange = errors.New("no change")

// UserRepository 用户集合的CRUD门面
// 每个方法都从存储重新加载完整集合，跨调用不持有内存缓存
// 变更方法的读-改-写在存储的同一临界区内完成
type UserRepository struct {
	store *store.FileStore
}

func NewUserRepository(s *store.FileStore) *UserRepository {
	return &UserRepository{store: s}
}

// FindByUsername 按用户名查找（不区分大小写）
func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	users, err := r.store.ReadAll()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindByEmail 按邮箱查找（不区分大小写）
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	users, err := r.store.ReadAll()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindByID 按ID精确查找
func (r *UserRepository) FindByID(id string) (*model.User, error) {
	users, err := r.store.ReadAll()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Exists 用户名或邮箱任一命中即为存在（均不区分大小写）
func (r *UserRepository) Exists(username, email string) (bool, error) {
	users, err := r.store.ReadAll()
	if err != nil {
		return false, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) ||
			strings.EqualFold(users[i].Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// ListAll 返回完整用户集合
func (r *UserRepository) ListAll() ([]model.User, error) {
	return r.store.ReadAll()
}

// Insert 追加新用户并持久化，返回入库记录
func (r *UserRepository) Insert(user *model.User) (*model.User, error) {
	_, err := r.store.Update(func(users []model.User) ([]model.User, error) {
		return append(users, *user), nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update 将补丁浅合并到指定记录并持久化
// 目标不存在时返回nil且不写盘
func (r *UserRepository) Update(id string, patch model.UserPatch) (*model.User, error) {
	var merged *model.User
	_, err := r.store.Update(func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].ID == id {
				patch.Apply(&users[i])
				u := users[i]
				merged = &u
				return users, nil
			}
		}
		return users, errNoChange
	})
	if errors.Is(err, errNoChange) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// Remove 删除指定记录，找到并删除时返回true
// 未找到时不写盘
func (r *UserRepository) Remove(id string) (bool, error) {
	_, err := r.store.Update(func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].ID == id {
				return append(users[:i], users[i+1:]...), nil
			}
		}
		return users, errNoChange
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// NewID 生成新用户ID：当前毫秒时间戳 + 随机base36后缀
// 唯一性是概率性的，不做碰撞检查
func (r *UserRepository) NewID() string {
	return fmt.Sprintf("user_%d_%s", time.Now().UnixMilli(), randomSuffix(9))
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}
