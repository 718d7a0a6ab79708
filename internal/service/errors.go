package service

import "errors"

// 业务错误分类
// ErrInvalidCredentials 对"用户不存在"和"密码错误"使用同一错误值，
// 避免向调用方泄露是哪个字段出错
var (
	ErrUserConflict       = errors.New("Username or email already exists")
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrUserNotFound       = errors.New("User not found")
)

// ValidationError 输入校验失败，调用方可修正后重试
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(message string) error {
	return &ValidationError{Message: message}
}
