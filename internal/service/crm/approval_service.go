package crm

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/funnel"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/notification"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/realtime"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/metrics"
)

// ApprovalService 阶段审批流。
// 审批记录是追加式日志：提交、通过、驳回各追加一行，历史永不改写。
type ApprovalService struct {
	funnels   *FunnelService
	tickets   *repository.TicketRepository
	approvals *repository.ApprovalRepository
	notifier  *notification.Manager
	hub       *realtime.Hub
}

// NewApprovalService 创建审批服务
func NewApprovalService(
	funnels *FunnelService,
	tickets *repository.TicketRepository,
	approvals *repository.ApprovalRepository,
	notifier *notification.Manager,
	hub *realtime.Hub,
) *ApprovalService {
	return &ApprovalService{
		funnels:   funnels,
		tickets:   tickets,
		approvals: approvals,
		notifier:  notifier,
		hub:       hub,
	}
}

// Request 为工单当前阶段提交审批申请（追加pending记录）
func (s *ApprovalService) Request(orgID, ticketID, actorID string, req *model.RequestApprovalRequest) (*model.StageApproval, error) {
	ticket, err := s.tickets.FindByID(orgID, ticketID)
	if err != nil {
		return nil, err
	}

	approval := &model.StageApproval{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		TicketID:       ticketID,
		StageID:        ticket.StageID,
		Status:         model.ApprovalPending,
		RequestedBy:    actorID,
		Comment:        req.Comment,
	}
	if err := s.approvals.Append(approval); err != nil {
		return nil, fmt.Errorf("提交审批申请失败: %w", err)
	}

	return approval, nil
}

// Decide 对工单某阶段做出审批决定。
// 只允许审批工单当前所在的阶段；
// 通过且不在最后一个阶段时，阶段指针前移一位（带乐观锁）；
// 在最后一个阶段通过时指针不动，流程视为走完（重复通过是幂等的）；
// 驳回时指针不动，工单停在被驳回的阶段等待人工处理。
func (s *ApprovalService) Decide(orgID, ticketID, stageID, actorID string, req *model.DecideApprovalRequest) (*model.ServiceTicket, error) {
	ticket, err := s.tickets.FindByID(orgID, ticketID)
	if err != nil {
		return nil, err
	}

	if ticket.StageID != stageID {
		return nil, ErrNotCurrentStage
	}

	f, err := s.funnels.Get(orgID, ticket.FunnelID)
	if err != nil {
		return nil, err
	}

	stages := funnel.SortStages(f.Stages)
	currentIdx := funnel.StageIndex(stages, stageID)
	if currentIdx < 0 {
		return nil, ErrStageNotInFunnel
	}

	approval := &model.StageApproval{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		TicketID:       ticketID,
		StageID:        stageID,
		Status:         req.Decision,
		DecidedBy:      actorID,
		Comment:        req.Comment,
	}
	if err := s.approvals.Append(approval); err != nil {
		return nil, fmt.Errorf("写入审批记录失败: %w", err)
	}

	metrics.ApprovalDecisionsTotal.WithLabelValues(req.Decision).Inc()

	if req.Decision == model.ApprovalApproved && currentIdx < len(stages)-1 {
		next := &stages[currentIdx+1]
		updates := map[string]interface{}{
			"stage_id": next.ID,
		}
		if next.IsResolved {
			updates["status"] = model.TicketStatusResolved
			updates["resolved_at"] = time.Now()
		} else if ticket.Status == model.TicketStatusOpen {
			updates["status"] = model.TicketStatusInProgress
		}

		// 两个并发审批只会有一个推进成功，另一个撞上版本冲突
		rows, err := s.tickets.MoveStage(orgID, ticketID, ticket.Version, updates)
		if err != nil {
			return nil, fmt.Errorf("推进工单阶段失败: %w", err)
		}
		if rows == 0 {
			return nil, ErrVersionConflict
		}

		s.recordApprovalActivity(orgID, ticket, stages[currentIdx].Name, next.Name, actorID, req)
	} else {
		s.recordApprovalActivity(orgID, ticket, stages[currentIdx].Name, "", actorID, req)
	}

	s.notifier.SendApprovalDecision(orgID, ticketID, stageID, req.Decision, actorID, req.Comment)
	if s.hub != nil {
		s.hub.Broadcast(orgID, realtime.Event{
			Type: "ticket.approval",
			Data: map[string]string{
				"ticketId": ticketID,
				"stageId":  stageID,
				"decision": req.Decision,
			},
		})
	}

	return s.tickets.FindByID(orgID, ticketID)
}

// History 返回工单的完整审批历史（按时间升序）
func (s *ApprovalService) History(orgID, ticketID string) ([]model.StageApproval, error) {
	return s.approvals.ListByTicket(orgID, ticketID)
}

// Latest 返回工单各阶段的最新审批状态（追加日志之上的派生视图）
func (s *ApprovalService) Latest(orgID, ticketID string) (map[string]*model.StageApproval, error) {
	return s.approvals.LatestByStage(orgID, ticketID)
}

func (s *ApprovalService) recordApprovalActivity(orgID string, ticket *model.ServiceTicket, stageName, advancedTo, actorID string, req *model.DecideApprovalRequest) {
	message := fmt.Sprintf("阶段 %s 审批%s", stageName, decisionLabel(req.Decision))
	if advancedTo != "" {
		message = fmt.Sprintf("%s，推进到 %s", message, advancedTo)
	}
	meta, _ := json.Marshal(map[string]string{
		"stageId":  ticket.StageID,
		"decision": req.Decision,
		"comment":  req.Comment,
	})
	activity := &model.TicketActivity{
		ID:             uuid.New().String(),
		TicketID:       ticket.ID,
		OrganizationID: orgID,
		Type:           model.ActivityApproval,
		ActorID:        actorID,
		Message:        message,
		Metadata:       meta,
	}
	if err := s.tickets.CreateActivity(activity); err != nil {
		logger.Warnf("Failed to record approval activity for ticket %s: %v", ticket.ID, err)
	}
}

func decisionLabel(decision string) string {
	if decision == model.ApprovalRejected {
		return "驳回"
	}
	return "通过"
}
