package app

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/notification"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/realtime"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/ai"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/auth"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/crm"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/config"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/crypto"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
	pkgredis "github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/redis"
)

// Services 包含所有业务服务实例
type Services struct {
	Auth     *auth.AuthService
	Funnel   *crm.FunnelService
	Board    *crm.BoardService
	Ticket   *crm.TicketService
	Approval *crm.ApprovalService
	Stats    *crm.StatsService
	AI       *ai.Service
	Crypto   *crypto.Crypto
}

// BackgroundServices 后台任务服务
type BackgroundServices struct {
	SLA *crm.SLAService
	Hub *realtime.Hub
}

// InitializeServices 初始化所有业务服务
func InitializeServices(repos *Repositories, cfg *config.Config, notifier *notification.Manager, hub *realtime.Hub) *Services {
	cryptoSvc := crypto.NewCrypto(cfg.Security.JWTSecret)

	// Redis未启用时客户端为nil，依赖它的服务自动退化为纯数据库模式
	redisClient := pkgredis.GetClient()

	funnelService := crm.NewFunnelService(repos.Funnel, redisClient, cfg.CRM.FunnelCacheTTL)

	return &Services{
		Auth:     auth.NewAuthService(repos.User, repos.Organization, cfg.Security.JWTSecret),
		Funnel:   funnelService,
		Board:    crm.NewBoardService(funnelService, repos.Ticket, repos.Approval, redisClient, &cfg.CRM, notifier, hub),
		Ticket:   crm.NewTicketService(funnelService, repos.Ticket),
		Approval: crm.NewApprovalService(funnelService, repos.Ticket, repos.Approval, notifier, hub),
		Stats:    crm.NewStatsService(repos.Ticket, &cfg.SLA),
		AI:       ai.NewService(repos.Setting, cryptoSvc),
		Crypto:   cryptoSvc,
	}
}

// InitializeNotificationManager 根据配置装配Webhook通知器
func InitializeNotificationManager(cfg *config.Config) *notification.Manager {
	mgr := notification.NewManager()
	if !cfg.Notification.Enabled {
		mgr.SetEnabled(false)
		return mgr
	}
	if cfg.Notification.WebhookURL != "" {
		mgr.AddNotifier(notification.NewWebhookNotifier(cfg.Notification.WebhookURL, cfg.Notification.Secret))
		logger.Infof("Webhook notifier registered")
	}
	return mgr
}

// InitializeBackgroundServices 初始化后台任务（SLA巡检、实时事件Hub）
func InitializeBackgroundServices(repos *Repositories, cfg *config.Config, notifier *notification.Manager, hub *realtime.Hub) *BackgroundServices {
	return &BackgroundServices{
		SLA: crm.NewSLAService(repos.Ticket, notifier, hub, &cfg.SLA),
		Hub: hub,
	}
}
