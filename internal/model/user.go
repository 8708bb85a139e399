package model

import (
	"time"
)

// User 平台用户
type User struct {
	ID             string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username       string     `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Password       string     `json:"-" gorm:"type:varchar(255);not null"` // 不在JSON中暴露
	Email          string     `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	FullName       string     `json:"fullName" gorm:"type:varchar(100)"`
	Role           string     `json:"role" gorm:"type:varchar(20);default:'agent'"` // admin, manager, agent
	Status         string     `json:"status" gorm:"type:varchar(20);default:'active';index"`
	OrganizationID string     `json:"organizationId" gorm:"type:varchar(36);not null;index"`
	LastLoginTime  *time.Time `json:"lastLoginTime" gorm:"type:timestamp"`
	LastLoginIP    string     `json:"lastLoginIp" gorm:"type:varchar(45)"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
)

// PlatformLoginRecord 平台登录记录
type PlatformLoginRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index"`
	Username  string    `json:"username" gorm:"type:varchar(50);not null"`
	LoginIP   string    `json:"loginIp" gorm:"type:varchar(45)"`
	UserAgent string    `json:"userAgent" gorm:"type:varchar(255)"`
	LoginTime time.Time `json:"loginTime" gorm:"type:timestamp;not null;index"`
	Status    string    `json:"status" gorm:"type:varchar(20);default:'active';index"` // active, logged_out
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (PlatformLoginRecord) TableName() string {
	return "platform_login_records"
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=50"`
	Password       string `json:"password" binding:"required,min=6"`
	Email          string `json:"email" binding:"omitempty,email"`
	FullName       string `json:"fullName"`
	Role           string `json:"role"`
	OrganizationID string `json:"organizationId"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}
