package model

import (
	"time"
)

// 配置键
const (
	SettingAIProvider = "ai_provider" // openai, anthropic
	SettingAIAPIKey   = "ai_api_key"  // 加密存储
	SettingAIModel    = "ai_model"
	SettingWebhookURL = "notify_webhook_url"
)

// 敏感配置键，落库前必须加密
var SensitiveSettingKeys = map[string]bool{
	SettingAIAPIKey: true,
}

// Setting 组织级配置项
type Setting struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrganizationID string    `json:"organizationId" gorm:"type:varchar(36);not null;uniqueIndex:idx_setting_org_key"`
	Key            string    `json:"key" gorm:"type:varchar(100);not null;uniqueIndex:idx_setting_org_key"`
	Value          string    `json:"value" gorm:"type:text"`
	Category       string    `json:"category" gorm:"type:varchar(50);default:'general';index"` // general, ai, notification
	UpdatedBy      string    `json:"updatedBy" gorm:"type:varchar(36)"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Setting) TableName() string {
	return "settings"
}

// UpsertSettingRequest 写入配置请求
type UpsertSettingRequest struct {
	Key      string `json:"key" binding:"required"`
	Value    string `json:"value"`
	Category string `json:"category"`
}

// AISettings AI自动化配置视图（API Key已脱敏）
type AISettings struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	HasAPIKey bool   `json:"hasApiKey"`
}
