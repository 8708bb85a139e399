package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// 工单状态
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
	TicketStatusCancelled  = "cancelled"
)

// 工单优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ServiceTicket 服务工单（看板上的卡片）
type ServiceTicket struct {
	ID             string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrganizationID string `json:"organizationId" gorm:"type:varchar(36);not null;index:idx_ticket_org_funnel"`
	FunnelID       string `json:"funnelId" gorm:"type:varchar(36);not null;index:idx_ticket_org_funnel"`
	StageID        string `json:"stageId" gorm:"type:varchar(36);not null;index"`
	// 工单编号（TKT-前缀，创建时生成）
	Number      string `json:"number" gorm:"type:varchar(40);uniqueIndex"`
	Title       string `json:"title" gorm:"type:varchar(255);not null"`
	Description string `json:"description" gorm:"type:text"`
	Category    string `json:"category" gorm:"type:varchar(50);index"`
	Status      string `json:"status" gorm:"type:varchar(20);default:'open';index"`
	Priority    string `json:"priority" gorm:"type:varchar(20);default:'medium';index"`
	AssigneeID  string `json:"assigneeId" gorm:"type:varchar(36);index"`
	ClientName  string `json:"clientName" gorm:"type:varchar(255)"`
	ClientEmail string `json:"clientEmail" gorm:"type:varchar(100)"`
	ClientPhone string `json:"clientPhone" gorm:"type:varchar(30)"`
	PropertyID  string `json:"propertyId" gorm:"type:varchar(36);index"` // 关联的房源ID
	// 工单预估金额（销售漏斗使用）
	Value decimal.Decimal `json:"value" gorm:"type:decimal(12,2);default:0"`
	Tags  StringArray     `json:"tags,omitempty" gorm:"type:text"`
	// 自定义字段（JSON对象）。阶段要求的 requiredFields 可以引用其中的键
	CustomFields datatypes.JSON `json:"customFields,omitempty" gorm:"type:json"`
	SLADueAt     *time.Time     `json:"slaDueAt,omitempty" gorm:"type:timestamp;index"`
	// SLA是否已超期（定时扫描置位，同时作为扫描去重依据）
	SLABreached bool       `json:"slaBreached" gorm:"type:boolean;default:false;index"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty" gorm:"type:timestamp"`
	// 乐观锁版本号，每次写操作递增；移动工单必须携带当前版本
	Version   uint            `json:"version" gorm:"type:int unsigned;not null;default:0"`
	Tasks     []ServiceTask   `json:"tasks,omitempty" gorm:"foreignKey:TicketID;references:ID"`
	Products  []TicketProduct `json:"products,omitempty" gorm:"foreignKey:TicketID;references:ID"`
	CreatedBy string          `json:"createdBy" gorm:"type:varchar(36)"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (ServiceTicket) TableName() string {
	return "service_tickets"
}

// FieldValue 按字段名取工单字段值，用于阶段要求中 requiredFields 的校验。
// 内置字段走类型化分支，未知字段名回落到 custom_fields 查找。
func (t *ServiceTicket) FieldValue(field string) string {
	switch field {
	case "title":
		return t.Title
	case "number":
		return t.Number
	case "description":
		return t.Description
	case "category":
		return t.Category
	case "priority":
		return t.Priority
	case "assignee_id", "assigneeId":
		return t.AssigneeID
	case "client_name", "clientName":
		return t.ClientName
	case "client_email", "clientEmail":
		return t.ClientEmail
	case "client_phone", "clientPhone":
		return t.ClientPhone
	case "property_id", "propertyId":
		return t.PropertyID
	case "value":
		if t.Value.IsZero() {
			return ""
		}
		return t.Value.String()
	default:
		return t.customFieldValue(field)
	}
}

// customFieldValue 从 custom_fields JSON对象中取值，缺失或为null时返回空串
func (t *ServiceTicket) customFieldValue(field string) string {
	if len(t.CustomFields) == 0 {
		return ""
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(t.CustomFields, &fields); err != nil {
		return ""
	}
	v, ok := fields[field]
	if !ok || v == nil {
		return ""
	}
	if s, isString := v.(string); isString {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// 子任务状态
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// ServiceTask 工单子任务（检查清单项）
// StageID 记录任务创建时所属的阶段，阶段要求校验按此归属统计
type ServiceTask struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TicketID    string     `json:"ticketId" gorm:"type:varchar(36);not null;index"`
	StageID     string     `json:"stageId" gorm:"type:varchar(36);index"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null"`
	Status      string     `json:"status" gorm:"type:varchar(20);default:'todo'"` // todo, in_progress, completed
	Position    int        `json:"position" gorm:"type:int;default:0"`
	AssigneeID  string     `json:"assigneeId" gorm:"type:varchar(36)"`
	CompletedAt *time.Time `json:"completedAt,omitempty" gorm:"type:timestamp"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (ServiceTask) TableName() string {
	return "service_tasks"
}

// TicketProduct 工单关联产品/服务项目
type TicketProduct struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TicketID  string          `json:"ticketId" gorm:"type:varchar(36);not null;index"`
	Name      string          `json:"name" gorm:"type:varchar(255);not null"`
	Quantity  int             `json:"quantity" gorm:"type:int;default:1"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(12,2);default:0"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

func (TicketProduct) TableName() string {
	return "ticket_products"
}

// Total 产品小计
func (p *TicketProduct) Total() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// 活动类型
const (
	ActivityStageChange = "stage_change"
	ActivityApproval    = "approval"
	ActivityComment     = "comment"
	ActivityCreated     = "created"
	ActivityUpdated     = "updated"
	ActivitySLABreach   = "sla_breach"
)

// TicketActivity 工单活动流（阶段变更、审批、评论等事件的追加记录）
type TicketActivity struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TicketID       string         `json:"ticketId" gorm:"type:varchar(36);not null;index"`
	OrganizationID string         `json:"organizationId" gorm:"type:varchar(36);not null;index"`
	Type           string         `json:"type" gorm:"type:varchar(30);not null;index"`
	ActorID        string         `json:"actorId" gorm:"type:varchar(36)"`
	Message        string         `json:"message" gorm:"type:text"`
	Metadata       datatypes.JSON `json:"metadata,omitempty" gorm:"type:json"`
	CreatedAt      time.Time      `json:"createdAt" gorm:"autoCreateTime;index"`
}

func (TicketActivity) TableName() string {
	return "ticket_activities"
}

// CreateTicketRequest 创建工单请求
type CreateTicketRequest struct {
	FunnelID     string                 `json:"funnelId" binding:"required"`
	StageID      string                 `json:"stageId"` // 为空时落在漏斗第一个阶段
	Title        string                 `json:"title" binding:"required"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	Priority     string                 `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssigneeID   string                 `json:"assigneeId"`
	ClientName   string                 `json:"clientName"`
	ClientEmail  string                 `json:"clientEmail" binding:"omitempty,email"`
	ClientPhone  string                 `json:"clientPhone"`
	PropertyID   string                 `json:"propertyId"`
	Value        decimal.Decimal        `json:"value"`
	Tags         []string               `json:"tags"`
	CustomFields map[string]interface{} `json:"customFields"`
	SLADueAt     *time.Time             `json:"slaDueAt"`
}

// UpdateTicketRequest 更新工单请求（不含阶段移动，移动走独立接口）
type UpdateTicketRequest struct {
	Title        string                 `json:"title"`
	Description  *string                `json:"description"`
	Category     *string                `json:"category"`
	Status       string                 `json:"status" binding:"omitempty,oneof=open in_progress resolved closed cancelled"`
	Priority     string                 `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssigneeID   *string                `json:"assigneeId"`
	ClientName   *string                `json:"clientName"`
	ClientEmail  *string                `json:"clientEmail"`
	ClientPhone  *string                `json:"clientPhone"`
	PropertyID   *string                `json:"propertyId"`
	Value        *decimal.Decimal       `json:"value"`
	Tags         []string               `json:"tags"`
	CustomFields map[string]interface{} `json:"customFields"`
	SLADueAt     *time.Time             `json:"slaDueAt"`
}

// MoveTicketRequest 移动工单到目标阶段
type MoveTicketRequest struct {
	StageID string `json:"stageId" binding:"required"`
	// 客户端持有的版本号，与当前版本不一致时返回409
	Version uint `json:"version"`
}

// CreateTaskRequest 创建子任务请求
type CreateTaskRequest struct {
	Title      string `json:"title" binding:"required"`
	StageID    string `json:"stageId"` // 为空时使用工单当前阶段
	AssigneeID string `json:"assigneeId"`
	Position   int    `json:"position"`
}

// UpdateTaskRequest 更新子任务请求
type UpdateTaskRequest struct {
	Title      string  `json:"title"`
	Status     string  `json:"status" binding:"omitempty,oneof=todo in_progress completed"`
	AssigneeID *string `json:"assigneeId"`
	Position   *int    `json:"position"`
}

// CreateProductRequest 添加关联产品请求
type CreateProductRequest struct {
	Name      string          `json:"name" binding:"required"`
	Quantity  int             `json:"quantity" binding:"omitempty,min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}
