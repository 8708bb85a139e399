package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/funnel"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/notification"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/realtime"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/config"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/distributed"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/metrics"
)

// BoardView 看板视图：漏斗定义加按阶段分组的工单
type BoardView struct {
	Funnel  *model.Funnel   `json:"funnel"`
	Columns []funnel.Column `json:"columns"`
}

// StageStatusView 单个阶段针对某工单的推导状态
type StageStatusView struct {
	Stage  model.FunnelStage  `json:"stage"`
	Status funnel.StageStatus `json:"status"`
}

// BoardService 看板装配与工单阶段移动
type BoardService struct {
	funnels     *FunnelService
	tickets     *repository.TicketRepository
	approvals   *repository.ApprovalRepository
	redisClient *goredis.Client
	crmCfg      *config.CRMConfig
	notifier    *notification.Manager
	hub         *realtime.Hub
}

// NewBoardService 创建看板服务
func NewBoardService(
	funnels *FunnelService,
	tickets *repository.TicketRepository,
	approvals *repository.ApprovalRepository,
	redisClient *goredis.Client,
	crmCfg *config.CRMConfig,
	notifier *notification.Manager,
	hub *realtime.Hub,
) *BoardService {
	return &BoardService{
		funnels:     funnels,
		tickets:     tickets,
		approvals:   approvals,
		redisClient: redisClient,
		crmCfg:      crmCfg,
		notifier:    notifier,
		hub:         hub,
	}
}

// Board 组装看板：漏斗定义 + 按阶段分组的工单列
func (s *BoardService) Board(orgID, funnelID string) (*BoardView, error) {
	f, err := s.funnels.Get(orgID, funnelID)
	if err != nil {
		return nil, err
	}

	tickets, err := s.tickets.List(orgID, &repository.TicketFilter{FunnelID: funnelID})
	if err != nil {
		return nil, err
	}

	return &BoardView{
		Funnel:  f,
		Columns: funnel.Group(f, tickets),
	}, nil
}

// Validate 校验工单是否满足某阶段的前置要求
func (s *BoardService) Validate(orgID, ticketID, stageID string) (*funnel.ValidationResult, error) {
	ticket, err := s.tickets.FindByID(orgID, ticketID)
	if err != nil {
		return nil, err
	}

	f, err := s.funnels.Get(orgID, ticket.FunnelID)
	if err != nil {
		return nil, err
	}

	stage := f.StageByID(stageID)
	if stage == nil {
		return nil, ErrStageNotInFunnel
	}

	reqs, err := stage.ParseRequirements()
	if err != nil {
		return nil, fmt.Errorf("阶段要求配置无效: %w", err)
	}

	approval, err := s.approvals.LatestForStage(orgID, ticketID, stageID)
	if err != nil {
		return nil, err
	}

	return funnel.Validate(stageID, reqs, ticket, approval), nil
}

// StageStatuses 推导工单在其漏斗各阶段的展示状态
func (s *BoardService) StageStatuses(orgID, ticketID string) ([]StageStatusView, error) {
	ticket, err := s.tickets.FindByID(orgID, ticketID)
	if err != nil {
		return nil, err
	}

	f, err := s.funnels.Get(orgID, ticket.FunnelID)
	if err != nil {
		return nil, err
	}

	approvals, err := s.approvals.LatestByStage(orgID, ticketID)
	if err != nil {
		return nil, err
	}

	stages := funnel.SortStages(f.Stages)
	statuses := funnel.DeriveAll(stages, ticket, approvals)

	views := make([]StageStatusView, len(stages))
	for i := range stages {
		views[i] = StageStatusView{Stage: stages[i], Status: statuses[i]}
	}
	return views, nil
}

// Move 把工单移动到目标阶段。
// 服务端是移动校验的唯一权威：
//   - 目标阶段必须属于工单所在漏斗
//   - 请求携带的版本号必须与当前版本一致（乐观锁，冲突返回409）
//   - 漏斗处于顺序推进模式时，向前只能移到相邻的下一阶段，
//     且当前阶段的前置要求必须全部满足（未满足返回422）
//   - 进入标记为已解决的阶段时工单状态置为resolved
//
// Redis锁只是同一工单并发移动的快速失败优化，正确性由版本号保证。
func (s *BoardService) Move(orgID, ticketID string, req *model.MoveTicketRequest, actorID string) (*model.ServiceTicket, error) {
	ctx := context.Background()

	lock := distributed.NewTicketLock(s.redisClient, ticketID, time.Duration(s.crmCfg.MoveLockTTL)*time.Second)
	acquired, lockErr := lock.TryLock(ctx)
	switch {
	case lockErr != nil:
		// Redis故障时跳过快速失败优化，继续移动，正确性由版本号保证
		logger.Warnf("Ticket move lock unavailable for %s, falling back to version check: %v", ticketID, lockErr)
	case !acquired:
		metrics.TicketMovesTotal.WithLabelValues("unknown", "conflict").Inc()
		return nil, ErrVersionConflict
	default:
		defer func() {
			if err := lock.Unlock(ctx); err != nil {
				logger.Warnf("Ticket move unlock failed for %s: %v", ticketID, err)
			}
		}()
	}

	ticket, err := s.tickets.FindByID(orgID, ticketID)
	if err != nil {
		return nil, err
	}

	f, err := s.funnels.Get(orgID, ticket.FunnelID)
	if err != nil {
		return nil, err
	}
	funnelType := f.Type

	target := f.StageByID(req.StageID)
	if target == nil {
		metrics.TicketMovesTotal.WithLabelValues(funnelType, "error").Inc()
		return nil, ErrStageNotInFunnel
	}

	stages := funnel.SortStages(f.Stages)
	currentIdx := funnel.StageIndex(stages, ticket.StageID)
	targetIdx := funnel.StageIndex(stages, req.StageID)

	if targetIdx == currentIdx {
		// 原地移动，无事可做
		return ticket, nil
	}

	if f.SequentialEnforced(s.crmCfg.EnforceSequential) && targetIdx > currentIdx {
		if targetIdx != currentIdx+1 {
			metrics.TicketMovesTotal.WithLabelValues(funnelType, "blocked").Inc()
			return nil, ErrSequentialMove
		}

		// 离开当前阶段前，当前阶段的前置要求必须全部满足
		current := &stages[currentIdx]
		reqs, err := current.ParseRequirements()
		if err != nil {
			return nil, fmt.Errorf("阶段要求配置无效: %w", err)
		}
		approval, err := s.approvals.LatestForStage(orgID, ticketID, current.ID)
		if err != nil {
			return nil, err
		}
		if result := funnel.Validate(current.ID, reqs, ticket, approval); !result.Valid {
			metrics.TicketMovesTotal.WithLabelValues(funnelType, "blocked").Inc()
			return nil, &ValidationBlockedError{StageName: current.Name, Result: result}
		}
	}

	updates := map[string]interface{}{
		"stage_id": target.ID,
	}
	now := time.Now()
	switch {
	case target.IsResolved:
		updates["status"] = model.TicketStatusResolved
		updates["resolved_at"] = now
	case ticket.Status == model.TicketStatusResolved:
		// 从已解决阶段移回，工单重新打开
		updates["status"] = model.TicketStatusInProgress
		updates["resolved_at"] = nil
	case ticket.Status == model.TicketStatusOpen:
		updates["status"] = model.TicketStatusInProgress
	}

	rows, err := s.tickets.MoveStage(orgID, ticketID, req.Version, updates)
	if err != nil {
		metrics.TicketMovesTotal.WithLabelValues(funnelType, "error").Inc()
		return nil, fmt.Errorf("移动工单失败: %w", err)
	}
	if rows == 0 {
		metrics.TicketMovesTotal.WithLabelValues(funnelType, "conflict").Inc()
		return nil, ErrVersionConflict
	}

	fromName := ""
	if currentIdx >= 0 {
		fromName = stages[currentIdx].Name
	}
	s.recordStageChange(orgID, ticket, fromName, target, actorID)

	metrics.TicketMovesTotal.WithLabelValues(funnelType, "ok").Inc()

	// 返回服务端权威版本
	return s.tickets.FindByID(orgID, ticketID)
}

// recordStageChange 写入活动流并广播事件，失败只记日志
func (s *BoardService) recordStageChange(orgID string, ticket *model.ServiceTicket, fromName string, target *model.FunnelStage, actorID string) {
	meta, _ := json.Marshal(map[string]string{
		"fromStageId": ticket.StageID,
		"toStageId":   target.ID,
		"fromStage":   fromName,
		"toStage":     target.Name,
	})
	activity := &model.TicketActivity{
		ID:             uuid.New().String(),
		TicketID:       ticket.ID,
		OrganizationID: orgID,
		Type:           model.ActivityStageChange,
		ActorID:        actorID,
		Message:        fmt.Sprintf("%s → %s", fromName, target.Name),
		Metadata:       meta,
	}
	if err := s.tickets.CreateActivity(activity); err != nil {
		logger.Warnf("Failed to record stage change activity for ticket %s: %v", ticket.ID, err)
	}

	if s.notifier != nil {
		s.notifier.SendTicketMoved(orgID, ticket.ID, ticket.Title, fromName, target.Name, actorID)
	}
	if s.hub != nil {
		s.hub.Broadcast(orgID, realtime.Event{
			Type: "ticket.moved",
			Data: map[string]string{
				"ticketId":  ticket.ID,
				"toStageId": target.ID,
			},
		})
	}
}
