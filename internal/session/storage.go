package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"chat-system/internal/model"
)

// Storage 当前用户的本地持久化
// 单个JSON文件保存一条用户记录，时间字段为ISO-8601文本
type Storage struct {
	path string
}

func NewStorage(path string) *Storage {
	return &Storage{path: path}
}

// Save 保存当前用户记录
func (s *Storage) Save(user *model.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("创建会话目录失败: %w", err)
	}
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("写入会话文件失败: %w", err)
	}
	return nil
}

// Load 读取已保存的用户记录
// 文件不存在返回nil；无法解析返回错误
func (s *Storage) Load() (*model.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取会话文件失败: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("解析会话文件失败: %w", err)
	}
	return &user, nil
}

// Clear 删除已保存的会话
func (s *Storage) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除会话文件失败: %w", err)
	}
	return nil
}
