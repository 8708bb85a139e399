package app

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/api/handler"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/realtime"
)

// Handlers 包含所有 HTTP Handler 实例
type Handlers struct {
	Auth         *handler.AuthHandler
	Organization *handler.OrganizationHandler
	Setting      *handler.SettingHandler
	Funnel       *handler.FunnelHandler
	Board        *handler.BoardHandler
	Ticket       *handler.TicketHandler
	Approval     *handler.ApprovalHandler
	Dashboard    *handler.DashboardHandler
	AI           *handler.AIHandler
	WS           *handler.WSHandler
}

// InitializeHandlers 初始化所有 Handler
func InitializeHandlers(repos *Repositories, services *Services, hub *realtime.Hub) *Handlers {
	return &Handlers{
		Auth:         handler.NewAuthHandler(services.Auth),
		Organization: handler.NewOrganizationHandler(repos.Organization),
		Setting:      handler.NewSettingHandler(repos.Setting, services.Crypto),
		Funnel:       handler.NewFunnelHandler(services.Funnel),
		Board:        handler.NewBoardHandler(services.Board),
		Ticket:       handler.NewTicketHandler(services.Ticket),
		Approval:     handler.NewApprovalHandler(services.Approval),
		Dashboard:    handler.NewDashboardHandler(services.Stats),
		AI:           handler.NewAIHandler(services.AI),
		WS:           handler.NewWSHandler(hub),
	}
}
