package response

import (
	"net/http"
	"time"

	"chat-system/internal/model"

	"github.com/gin-gonic/gin"
)

// UserInfo 对外暴露的用户信息（隐藏密码字段）
// 时间字段以ISO-8601文本序列化
type UserInfo struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
	IsOnline  bool      `json:"isOnline"`
}

// FilterUserInfo 过滤用户信息，剥离密码字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
		LastSeen:  user.LastSeen,
		IsOnline:  user.IsOnline,
	}
}

// FilterUserList 批量过滤用户信息
func FilterUserList(users []model.User) []*UserInfo {
	infos := make([]*UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, FilterUserInfo(&users[i]))
	}
	return infos
}

// Success 200成功响应，附带消息
func Success(c *gin.Context, message string, data interface{}) {
	body := gin.H{"message": message}
	if data != nil {
		body["user"] = data
	}
	c.JSON(http.StatusOK, body)
}

// Created 201创建成功响应
func Created(c *gin.Context, message string, user *UserInfo) {
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"user":    user,
	})
}

// UserList 200用户目录响应
func UserList(c *gin.Context, users []*UserInfo) {
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Error 错误响应
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409错误
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
