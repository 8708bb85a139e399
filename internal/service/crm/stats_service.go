package crm

import (
	"time"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/config"
)

// StatsService 工单看板统计
type StatsService struct {
	tickets *repository.TicketRepository
	slaCfg  *config.SLAConfig
}

// NewStatsService 创建统计服务
func NewStatsService(tickets *repository.TicketRepository, slaCfg *config.SLAConfig) *StatsService {
	return &StatsService{tickets: tickets, slaCfg: slaCfg}
}

// Dashboard 统计组织（或指定漏斗）的工单分布与SLA情况
func (s *StatsService) Dashboard(orgID, funnelID string) (*model.DashboardStats, error) {
	total, err := s.tickets.CountTotal(orgID, funnelID)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.tickets.CountByStatus(orgID, funnelID)
	if err != nil {
		return nil, err
	}

	byPriority, err := s.tickets.CountByPriority(orgID, funnelID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	breached, err := s.tickets.CountSLABreached(orgID, now)
	if err != nil {
		return nil, err
	}

	window := time.Duration(s.slaCfg.DueSoonHours) * time.Hour
	dueSoon, err := s.tickets.CountSLADueSoon(orgID, now, window)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		Total:      total,
		ByStatus:   byStatus,
		ByPriority: byPriority,
		SLABreach:  breached,
		SLADueSoon: dueSoon,
	}, nil
}
