package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chat-system/internal/model"
)

// Client 账户服务HTTP客户端
// 封装注册/登录/登出/用户目录四个操作，供会话镜像与CLI使用
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// userEnvelope 服务端的 {message, user} 响应体
type userEnvelope struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// listEnvelope 服务端的 {users} 响应体
type listEnvelope struct {
	Users []model.User `json:"users"`
}

// errorEnvelope 服务端的 {error} 响应体
type errorEnvelope struct {
	Error string `json:"error"`
}

// Register 注册新用户，返回入库记录（密码字段为空）
func (c *Client) Register(username, email, password, avatar string) (*model.User, error) {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"avatar":   avatar,
	}
	var env userEnvelope
	if err := c.post("/auth/register", body, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// Login 登录，返回更新后的用户记录
func (c *Client) Login(username, password string) (*model.User, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var env userEnvelope
	if err := c.post("/auth/login", body, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

// Logout 通知服务端将用户置为离线
func (c *Client) Logout(userID string) error {
	body := map[string]string{"userId": userID}
	var env userEnvelope
	return c.post("/auth/logout", body, &env)
}

// ListUsers 获取用户目录
func (c *Client) ListUsers() ([]model.User, error) {
	resp, err := c.http.Get(c.baseURL + "/users")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	var env listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return env.Users, nil
}

// post 发送JSON请求并解析响应，非2xx状态转换为错误
func (c *Client) post(path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != "" {
		return fmt.Errorf("%s (HTTP %d)", env.Error, resp.StatusCode)
	}
	return fmt.Errorf("请求失败 (HTTP %d)", resp.StatusCode)
}
