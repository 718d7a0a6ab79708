package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"chat-system/config"
	"chat-system/internal/model"
)

// ErrCorrupted 数据文件存在但无法解析
// 与"文件为空/不存在"区分开：空文件视为零条记录，损坏文件必须上报存储故障
var ErrCorrupted = errors.New("用户数据文件已损坏")

// document 磁盘上的完整文档结构
type document struct {
	Users []model.User `json:"users"`
}

// FileStore 用户集合的文件存储
// 整个集合保存为单个JSON文档，每次变更整体重写
// 所有读-改-写周期通过互斥锁串行化，进程内不会丢失更新
type FileStore struct {
	path string
	mu   sync.RWMutex
}

var fileStore *FileStore

// InitStore 初始化文件存储
// 确保数据目录存在，文件不存在时写入初始空文档
func InitStore(cfg config.StoreConfig) (*FileStore, error) {
	s, err := NewFileStore(cfg.Path())
	if err != nil {
		return nil, err
	}

	// 保存全局存储实例
	fileStore = s

	return s, nil
}

// NewFileStore 创建指向指定路径的文件存储
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if err := s.ensure(); err != nil {
		return nil, err
	}
	return s, nil
}

// GetStore 获取全局存储实例
func GetStore() *FileStore {
	return fileStore
}

// HealthCheck 存储健康检查：文件可读且可解析
func HealthCheck() error {
	if fileStore == nil {
		return fmt.Errorf("存储未初始化")
	}
	_, err := fileStore.ReadAll()
	return err
}

// Path 返回存储文件路径
func (s *FileStore) Path() string {
	return s.path
}

// ensure 确保数据目录与初始文档存在
func (s *FileStore) ensure() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return s.writeDocument(nil)
	} else if err != nil {
		return fmt.Errorf("检查数据文件失败: %w", err)
	}
	return nil
}

// ReadAll 读取整个用户集合
// 文件缺失或为空返回零条记录；解析失败返回ErrCorrupted
func (s *FileStore) ReadAll() ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readDocument()
}

// WriteAll 将整个用户集合写回磁盘
func (s *FileStore) WriteAll(users []model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDocument(users)
}

// Update 在一个临界区内完成读-改-写
// fn返回的集合被整体持久化；fn返回错误则不写盘
func (s *FileStore) Update(fn func(users []model.User) ([]model.User, error)) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.readDocument()
	if err != nil {
		return nil, err
	}
	out, err := fn(users)
	if err != nil {
		return nil, err
	}
	if err := s.writeDocument(out); err != nil {
		return nil, err
	}
	return out, nil
}

// readDocument 解析磁盘文档（调用方持锁）
func (s *FileStore) readDocument() ([]model.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.User{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if doc.Users == nil {
		return []model.User{}, nil
	}
	return doc.Users, nil
}

// writeDocument 序列化并整体覆盖磁盘文档（调用方持锁）
func (s *FileStore) writeDocument(users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	data, err := json.MarshalIndent(document{Users: users}, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化用户集合失败: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("写入数据文件失败: %w", err)
	}
	return nil
}
