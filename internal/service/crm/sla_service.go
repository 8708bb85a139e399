package crm

import (
	"time"

	"github.com/google/uuid"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/notification"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/realtime"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/config"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/metrics"
	"github.com/robfig/cron/v3"
)

// SLAService 定时扫描SLA超期的工单。
// 每个超期工单只登记一次（以sla_breached标记为去重依据）：
// 打标记、记活动、发通知、推送看板事件、累加指标。
type SLAService struct {
	tickets  *repository.TicketRepository
	notifier *notification.Manager
	hub      *realtime.Hub
	cfg      *config.SLAConfig
	cron     *cron.Cron
}

// NewSLAService 创建SLA监控服务
func NewSLAService(tickets *repository.TicketRepository, notifier *notification.Manager, hub *realtime.Hub, cfg *config.SLAConfig) *SLAService {
	return &SLAService{
		tickets:  tickets,
		notifier: notifier,
		hub:      hub,
		cfg:      cfg,
	}
}

// Start 启动定时扫描
func (s *SLAService) Start() error {
	if !s.cfg.Enabled {
		logger.Info("SLA monitor disabled by config")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.Scan); err != nil {
		return err
	}
	s.cron.Start()
	logger.Infof("SLA monitor started, schedule=%s", s.cfg.Schedule)
	return nil
}

// Stop 停止定时扫描，等待在途任务结束
func (s *SLAService) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

// Scan 单次扫描：刷新在途工单指标，找出新超期的工单并逐个登记
func (s *SLAService) Scan() {
	if counts, err := s.tickets.CountOpenByFunnel(); err == nil {
		for funnelID, count := range counts {
			metrics.TicketsOpen.WithLabelValues(funnelID).Set(float64(count))
		}
	}

	tickets, err := s.tickets.ListSLABreached(time.Now(), 0)
	if err != nil {
		logger.Errorf("SLA scan failed: %v", err)
		return
	}
	if len(tickets) == 0 {
		return
	}

	logger.Infof("SLA scan found %d newly breached ticket(s)", len(tickets))
	for i := range tickets {
		s.markBreached(&tickets[i])
	}
}

func (s *SLAService) markBreached(t *model.ServiceTicket) {
	if err := s.tickets.MarkSLABreached(t.ID); err != nil {
		logger.Warnf("Failed to flag SLA breach for ticket %s: %v", t.ID, err)
		return
	}

	activity := &model.TicketActivity{
		ID:             uuid.New().String(),
		TicketID:       t.ID,
		OrganizationID: t.OrganizationID,
		Type:           model.ActivitySLABreach,
		Message:        "SLA超期",
	}
	if err := s.tickets.CreateActivity(activity); err != nil {
		logger.Warnf("Failed to record SLA breach for ticket %s: %v", t.ID, err)
		return
	}

	metrics.SLABreachedTotal.Inc()

	if t.SLADueAt != nil {
		s.notifier.SendSLABreach(t.OrganizationID, t.ID, t.Title, *t.SLADueAt)
	}
	if s.hub != nil {
		s.hub.Broadcast(t.OrganizationID, realtime.Event{
			Type: "ticket.sla_breached",
			Data: map[string]string{"ticketId": t.ID},
		})
	}
}
