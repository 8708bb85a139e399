package app

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/repository"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/database"
)

// Repositories 包含所有 Repository 实例
type Repositories struct {
	Organization *repository.OrganizationRepository
	User         *repository.UserRepository
	Setting      *repository.SettingRepository
	Funnel       *repository.FunnelRepository
	Ticket       *repository.TicketRepository
	Approval     *repository.ApprovalRepository
}

// InitializeRepositories 初始化所有 Repository
func InitializeRepositories() *Repositories {
	return &Repositories{
		Organization: repository.NewOrganizationRepository(database.DB),
		User:         repository.NewUserRepository(database.DB),
		Setting:      repository.NewSettingRepository(database.DB),
		Funnel:       repository.NewFunnelRepository(database.DB),
		Ticket:       repository.NewTicketRepository(database.DB),
		Approval:     repository.NewApprovalRepository(database.DB),
	}
}
