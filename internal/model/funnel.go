package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 漏斗类型
const (
	FunnelTypeSales         = "sales"         // 销售漏斗
	FunnelTypeServices      = "services"      // 服务工单漏斗
	FunnelTypePredetermined = "predetermined" // 预定义流程漏斗
)

// Funnel 业务漏斗（看板的阶段流程定义）
type Funnel struct {
	ID             string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrganizationID string `json:"organizationId" gorm:"type:varchar(36);not null;index:idx_funnel_org_type"`
	Name           string `json:"name" gorm:"type:varchar(255);not null"`
	Type           string `json:"type" gorm:"type:varchar(20);not null;index:idx_funnel_org_type"` // sales, services, predetermined
	Description    string `json:"description" gorm:"type:text"`
	IsDefault      bool   `json:"isDefault" gorm:"type:boolean;default:false"`
	// 平台级模板漏斗：对所有组织可见，不可删除
	IsGlobalDefault bool `json:"isGlobalDefault" gorm:"type:boolean;default:false;index"`
	// 看板三态标签文案覆盖（JSON，结构见 FunnelStatusConfig）
	StatusConfig datatypes.JSON `json:"statusConfig,omitempty" gorm:"type:json"`
	// 流程级扩展配置（自动化触发器等挂载点）
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:json"`
	// 是否强制按阶段顺序推进。NULL表示跟随全局配置 crm.enforce_sequential
	EnforceSequential *bool         `json:"enforceSequential,omitempty" gorm:"type:boolean"`
	Position          int           `json:"position" gorm:"type:int;default:0"`
	Stages            []FunnelStage `json:"stages,omitempty" gorm:"foreignKey:FunnelID;references:ID"`
	CreatedAt         time.Time     `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt         time.Time     `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (Funnel) TableName() string {
	return "funnels"
}

// SequentialEnforced 解析本漏斗的顺序推进策略，未设置时回退到全局配置
func (f *Funnel) SequentialEnforced(globalDefault bool) bool {
	if f.EnforceSequential != nil {
		return *f.EnforceSequential
	}
	return globalDefault
}

// FunnelStatusConfig 看板三态标签文案
type FunnelStatusConfig struct {
	ResolvedLabel   string `json:"resolvedLabel,omitempty"`
	UnresolvedLabel string `json:"unresolvedLabel,omitempty"`
	InProgressLabel string `json:"inProgressLabel,omitempty"`
}

// ParseStatusConfig 解析标签文案配置，未配置时返回空配置
func (f *Funnel) ParseStatusConfig() (*FunnelStatusConfig, error) {
	cfg := &FunnelStatusConfig{}
	if len(f.StatusConfig) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(f.StatusConfig, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StageByID 按ID查找阶段
func (f *Funnel) StageByID(stageID string) *FunnelStage {
	for i := range f.Stages {
		if f.Stages[i].ID == stageID {
			return &f.Stages[i]
		}
	}
	return nil
}

// FunnelStage 漏斗阶段
type FunnelStage struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FunnelID string `json:"funnelId" gorm:"type:varchar(36);not null;index"`
	Name     string `json:"name" gorm:"type:varchar(255);not null"`
	Color    string `json:"color" gorm:"type:varchar(20);default:'#3b82f6'"`
	Position int    `json:"position" gorm:"type:int;not null"` // 阶段顺序，从0开始
	// 工单进入该阶段后视为已解决（status=resolved，记录resolved_at）
	IsResolved bool `json:"isResolved" gorm:"type:boolean;default:false"`
	// 进入该阶段的前置要求（JSON，结构见 StageRequirements）
	Requirements datatypes.JSON `json:"requirements,omitempty" gorm:"type:json"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (FunnelStage) TableName() string {
	return "funnel_stages"
}

// ParseRequirements 解析阶段的前置要求，未配置时返回空要求
func (s *FunnelStage) ParseRequirements() (*StageRequirements, error) {
	reqs := &StageRequirements{}
	if len(s.Requirements) == 0 {
		return reqs, nil
	}
	if err := json.Unmarshal(s.Requirements, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// StageRequirements 阶段前置要求
// 工单只有满足全部要求才能进入对应阶段
type StageRequirements struct {
	RequiredTasks    StringArray `json:"requiredTasks,omitempty"`    // 必须完成的任务ID
	RequiredFields   StringArray `json:"requiredFields,omitempty"`   // 必须填写的工单字段
	RequiredApproval bool        `json:"requiredApproval,omitempty"` // 是否需要当前阶段审批通过
	RequiredProducts bool        `json:"requiredProducts,omitempty"` // 是否需要至少一个关联产品
	MinProgress      int         `json:"minProgress,omitempty"`      // 任务完成率下限（0-100）
}

// IsEmpty 判断是否没有任何前置要求
func (r *StageRequirements) IsEmpty() bool {
	return len(r.RequiredTasks) == 0 &&
		len(r.RequiredFields) == 0 &&
		!r.RequiredApproval &&
		!r.RequiredProducts &&
		r.MinProgress <= 0
}

// StageInput 创建/更新漏斗时的阶段定义
type StageInput struct {
	ID           string             `json:"id"` // 更新时携带，空表示新建阶段
	Name         string             `json:"name" binding:"required"`
	Color        string             `json:"color"`
	IsResolved   bool               `json:"isResolved"`
	Requirements *StageRequirements `json:"requirements"`
}

// CreateFunnelRequest 创建漏斗请求
type CreateFunnelRequest struct {
	Name              string                 `json:"name" binding:"required"`
	Type              string                 `json:"type" binding:"required,oneof=sales services predetermined"`
	Description       string                 `json:"description"`
	EnforceSequential *bool                  `json:"enforceSequential"`
	StatusConfig      *FunnelStatusConfig    `json:"statusConfig"`
	Metadata          map[string]interface{} `json:"metadata"`
	Stages            []StageInput           `json:"stages"` // 为空时使用该类型的默认阶段集
}

// UpdateFunnelRequest 更新漏斗请求
type UpdateFunnelRequest struct {
	Name              string                 `json:"name" binding:"required"`
	Description       string                 `json:"description"`
	EnforceSequential *bool                  `json:"enforceSequential"`
	StatusConfig      *FunnelStatusConfig    `json:"statusConfig"`
	Metadata          map[string]interface{} `json:"metadata"`
	Stages            []StageInput           `json:"stages" binding:"required,min=1"`
}

// DuplicateFunnelRequest 复制漏斗请求
type DuplicateFunnelRequest struct {
	Name string `json:"name"` // 为空时使用 "<原名称> (cópia)"
}
