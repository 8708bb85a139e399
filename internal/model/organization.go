package model

import (
	"time"
)

// Organization 租户组织（多租户隔离的根对象，所有业务数据都归属某个组织）
type Organization struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"` // 组织标识符
	Plan      string    `json:"plan" gorm:"type:varchar(50);default:'standard'"`    // 订阅套餐：standard、pro、enterprise
	IsActive  bool      `json:"isActive" gorm:"type:boolean;default:true;index"`
	Timezone  string    `json:"timezone" gorm:"type:varchar(64);default:'America/Sao_Paulo'"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Organization) TableName() string {
	return "organizations"
}

// CreateOrganizationRequest 创建组织请求
type CreateOrganizationRequest struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug" binding:"required"`
	Plan     string `json:"plan"`
	Timezone string `json:"timezone"`
}

// UpdateOrganizationRequest 更新组织请求
type UpdateOrganizationRequest struct {
	Name     string `json:"name" binding:"required"`
	Plan     string `json:"plan"`
	IsActive *bool  `json:"isActive"`
	Timezone string `json:"timezone"`
}
