package model

import (
	"time"
)

// User 用户模型
// 唯一性约束：用户名唯一、邮箱唯一（均不区分大小写，由repository层在插入前检查）
// 说明：Password 以明文存储并逐字比较，仅作占位实现，不具备任何安全性
// IsOnline 标记用户在线/离线，LastSeen 记录最近一次登录或登出时间
// 时间字段序列化为 ISO-8601 文本（RFC3339Nano）

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
	IsOnline  bool      `json:"isOnline"`
}

// UserPatch 用户字段的浅合并补丁
// 仅非nil字段会覆盖原记录对应字段

type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	Avatar   *string
	LastSeen *time.Time
	IsOnline *bool
}

// Apply 将补丁合并到用户记录上
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.LastSeen != nil {
		u.LastSeen = *p.LastSeen
	}
	if p.IsOnline != nil {
		u.IsOnline = *p.IsOnline
	}
}
