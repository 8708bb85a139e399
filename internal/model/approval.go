package model

import (
	"time"
)

// 审批决定
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// StageApproval 阶段审批记录
// 追加式日志：每次提交审批、通过、驳回都新增一行，绝不原地修改。
// 某工单某阶段的当前审批状态取该阶段最新一条记录。
type StageApproval struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrganizationID string    `json:"organizationId" gorm:"type:varchar(36);not null;index"`
	TicketID       string    `json:"ticketId" gorm:"type:varchar(36);not null;index:idx_approval_ticket_stage"`
	StageID        string    `json:"stageId" gorm:"type:varchar(36);not null;index:idx_approval_ticket_stage"`
	Status         string    `json:"status" gorm:"type:varchar(20);not null"` // pending, approved, rejected
	RequestedBy    string    `json:"requestedBy" gorm:"type:varchar(36)"`
	DecidedBy      string    `json:"decidedBy" gorm:"type:varchar(36)"`
	Comment        string    `json:"comment" gorm:"type:text"`
	CreatedAt      time.Time `json:"createdAt" gorm:"autoCreateTime;index"`
}

func (StageApproval) TableName() string {
	return "stage_approvals"
}

// RequestApprovalRequest 提交阶段审批请求
type RequestApprovalRequest struct {
	Comment string `json:"comment"`
}

// DecideApprovalRequest 审批决定请求
type DecideApprovalRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Comment  string `json:"comment"`
}
