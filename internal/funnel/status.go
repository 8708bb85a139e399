package funnel

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
)

// StageStatus 阶段展示状态
type StageStatus string

const (
	StatusBlocked    StageStatus = "blocked"
	StatusCompleted  StageStatus = "completed"
	StatusInProgress StageStatus = "in_progress"
	StatusWarning    StageStatus = "warning"
	StatusRejected   StageStatus = "rejected"
)

// StageIndex 返回阶段ID在有序阶段列表中的下标，不存在时返回-1
func StageIndex(stages []model.FunnelStage, stageID string) int {
	for i := range stages {
		if stages[i].ID == stageID {
			return i
		}
	}
	return -1
}

// DeriveStatus 推导单个阶段的展示状态。
// stages 必须按Position排好序；approvals 是该工单各阶段的最新审批记录（stageID -> record）。
// 规则：
//   - 工单为空或其当前阶段不在列表中：所有阶段 blocked
//   - 该阶段最新审批被驳回：rejected（覆盖位置规则）
//   - 位于当前阶段之前：completed（历史阶段不因要求未满足而降级）
//   - 当前阶段：要求全满足为 in_progress，否则 warning
//   - 位于当前阶段之后：blocked
func DeriveStatus(stages []model.FunnelStage, t *model.ServiceTicket, index int, approvals map[string]*model.StageApproval) StageStatus {
	if index < 0 || index >= len(stages) {
		return StatusBlocked
	}
	if t == nil {
		return StatusBlocked
	}

	stage := &stages[index]
	approval := approvals[stage.ID]
	if approval != nil && approval.Status == model.ApprovalRejected {
		return StatusRejected
	}

	current := StageIndex(stages, t.StageID)
	if current < 0 {
		return StatusBlocked
	}

	switch {
	case index < current:
		return StatusCompleted
	case index > current:
		return StatusBlocked
	}

	// 当前阶段：按要求校验结果区分
	reqs, err := stage.ParseRequirements()
	if err != nil {
		// 要求配置损坏时按未配置处理，不阻塞看板渲染
		reqs = &model.StageRequirements{}
	}
	if result := Validate(stage.ID, reqs, t, approval); !result.Valid {
		return StatusWarning
	}
	return StatusInProgress
}

// DeriveAll 推导全部阶段的展示状态，顺序与 stages 一致
func DeriveAll(stages []model.FunnelStage, t *model.ServiceTicket, approvals map[string]*model.StageApproval) []StageStatus {
	statuses := make([]StageStatus, len(stages))
	for i := range stages {
		statuses[i] = DeriveStatus(stages, t, i, approvals)
	}
	return statuses
}
