package repository

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"gorm.io/gorm"
)

type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// Append 追加一条审批记录。审批日志只增不改。
func (r *ApprovalRepository) Append(a *model.StageApproval) error {
	return r.db.Create(a).Error
}

// ListByTicket 按时间升序返回工单的完整审批历史
func (r *ApprovalRepository) ListByTicket(orgID, ticketID string) ([]model.StageApproval, error) {
	var approvals []model.StageApproval
	err := r.db.Where("organization_id = ? AND ticket_id = ?", orgID, ticketID).
		Order("created_at ASC, id ASC").
		Find(&approvals).Error
	return approvals, err
}

// LatestByStage 返回工单每个阶段的最新审批记录（stageID -> record）
// 这是追加式日志之上的派生视图
func (r *ApprovalRepository) LatestByStage(orgID, ticketID string) (map[string]*model.StageApproval, error) {
	approvals, err := r.ListByTicket(orgID, ticketID)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]*model.StageApproval)
	for i := range approvals {
		// 列表按时间升序，后写入的覆盖先写入的
		latest[approvals[i].StageID] = &approvals[i]
	}
	return latest, nil
}

// LatestForStage 返回工单在指定阶段的最新审批记录，没有时返回 nil, nil
func (r *ApprovalRepository) LatestForStage(orgID, ticketID, stageID string) (*model.StageApproval, error) {
	var a model.StageApproval
	err := r.db.Where("organization_id = ? AND ticket_id = ? AND stage_id = ?", orgID, ticketID, stageID).
		Order("created_at DESC, id DESC").
		First(&a).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
