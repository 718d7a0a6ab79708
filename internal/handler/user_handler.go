package handler

import (
	"errors"

	"chat-system/internal/service"
	"chat-system/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	service *service.UserService
	log     *zap.Logger
}

func NewUserHandler(s *service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{service: s, log: log}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Avatar   string `json:"avatar"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.service.Register(r.Username, r.Email, r.Password, r.Avatar)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, "User registered successfully", response.FilterUserInfo(user))
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.service.Login(r.Username, r.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, "Login successful", response.FilterUserInfo(user))
}

// Logout 用户登出
func (h *UserHandler) Logout(c *gin.Context) {
	type req struct {
		UserID string `json:"userId"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.Logout(r.UserID); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, "Logout successful", nil)
}

// ListUsers 用户目录（密码字段已剥离）
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers()
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.UserList(c, response.FilterUserList(users))
}

// handleError 业务错误到HTTP状态码的统一映射
// 未识别的错误按存储故障处理：细节只进日志，响应体保持通用文案
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(c, ve.Message)
	case errors.Is(err, service.ErrUserConflict):
		response.Conflict(c, service.ErrUserConflict.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, service.ErrUserNotFound.Error())
	default:
		h.log.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.InternalError(c, "Internal server error")
	}
}
