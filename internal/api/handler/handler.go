// Package handler 提供统一的 handler 导出
// 所有 handler 按功能模块分类到子目录中
package handler

// 重新导出所有 handler 类型，router 只依赖本包
import (
	// Auth handlers
	authHandler "github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/api/handler/auth"
	// Automation handlers
	automationHandler "github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/api/handler/automation"
	// CRM handlers
	crmHandler "github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/api/handler/crm"
	// System handlers
	systemHandler "github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/api/handler/system"
)

// Auth handlers
type AuthHandler = authHandler.AuthHandler

var NewAuthHandler = authHandler.NewAuthHandler

// CRM handlers
type FunnelHandler = crmHandler.FunnelHandler
type BoardHandler = crmHandler.BoardHandler
type TicketHandler = crmHandler.TicketHandler
type ApprovalHandler = crmHandler.ApprovalHandler
type DashboardHandler = crmHandler.DashboardHandler
type WSHandler = crmHandler.WSHandler

var NewFunnelHandler = crmHandler.NewFunnelHandler
var NewBoardHandler = crmHandler.NewBoardHandler
var NewTicketHandler = crmHandler.NewTicketHandler
var NewApprovalHandler = crmHandler.NewApprovalHandler
var NewDashboardHandler = crmHandler.NewDashboardHandler
var NewWSHandler = crmHandler.NewWSHandler

// System handlers
type OrganizationHandler = systemHandler.OrganizationHandler
type SettingHandler = systemHandler.SettingHandler

var NewOrganizationHandler = systemHandler.NewOrganizationHandler
var NewSettingHandler = systemHandler.NewSettingHandler

// Automation handlers
type AIHandler = automationHandler.AIHandler

var NewAIHandler = automationHandler.NewAIHandler
