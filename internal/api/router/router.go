package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/guesttobuy-code/rendizy2testesbackup-sub005/docs" // swagger docs
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/api/handler"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/api/middleware"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/auth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func Setup(
	authHandler *handler.AuthHandler,
	organizationHandler *handler.OrganizationHandler,
	settingHandler *handler.SettingHandler,
	funnelHandler *handler.FunnelHandler,
	boardHandler *handler.BoardHandler,
	ticketHandler *handler.TicketHandler,
	approvalHandler *handler.ApprovalHandler,
	dashboardHandler *handler.DashboardHandler,
	aiHandler *handler.AIHandler,
	wsHandler *handler.WSHandler,
	authService *auth.AuthService,
	mode string,
) *gin.Engine {
	r := gin.New()

	// 使用自定义的 recovery 中间件（打印详细错误信息）
	r.Use(middleware.RecoveryMiddleware())
	// 使用 Gin 的 Logger 中间件（记录请求日志）
	r.Use(gin.Logger())

	r.Use(middleware.CORS())
	r.Use(middleware.MetricsMiddleware())

	api := r.Group("/api/v1")

	// 公开API（不需要认证）
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// 需要认证的API
	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware(authService))
	{
		// 当前用户
		authenticated.GET("/auth/me", authHandler.GetCurrentUser)
		authenticated.POST("/auth/change-password", authHandler.ChangePassword)

		// 用户管理
		authenticated.GET("/users", authHandler.ListUsers)
		authenticated.PUT("/users/:id", middleware.AdminMiddleware(), authHandler.UpdateUser)

		// 组织管理（仅管理员）
		organizations := authenticated.Group("/organizations")
		organizations.Use(middleware.AdminMiddleware())
		{
			organizations.GET("", organizationHandler.ListOrganizations)
			organizations.GET("/:id", organizationHandler.GetOrganization)
			organizations.POST("", organizationHandler.CreateOrganization)
			organizations.PUT("/:id", organizationHandler.UpdateOrganization)
		}

		// 组织配置（仅管理员）
		settings := authenticated.Group("/settings")
		settings.Use(middleware.AdminMiddleware())
		{
			settings.GET("", settingHandler.GetAllSettings)
			settings.PUT("", settingHandler.UpdateSetting)
			settings.DELETE("/:key", settingHandler.DeleteSetting)
		}

		// 漏斗管理
		funnels := authenticated.Group("/funnels")
		{
			funnels.GET("", funnelHandler.ListFunnels)
			funnels.GET("/:id", funnelHandler.GetFunnel)
			funnels.GET("/:id/board", boardHandler.GetBoard)
			// 漏斗和阶段定义的修改需要管理者权限
			funnels.POST("", middleware.ManagerMiddleware(), funnelHandler.CreateFunnel)
			funnels.PUT("/:id", middleware.ManagerMiddleware(), funnelHandler.UpdateFunnel)
			funnels.POST("/:id/duplicate", middleware.ManagerMiddleware(), funnelHandler.DuplicateFunnel)
			funnels.DELETE("/:id", middleware.ManagerMiddleware(), funnelHandler.DeleteFunnel)
		}

		// 工单管理
		tickets := authenticated.Group("/tickets")
		{
			tickets.GET("", ticketHandler.ListTickets)
			tickets.POST("", ticketHandler.CreateTicket)
			tickets.GET("/:id", ticketHandler.GetTicket)
			tickets.PUT("/:id", ticketHandler.UpdateTicket)
			tickets.DELETE("/:id", middleware.ManagerMiddleware(), ticketHandler.DeleteTicket)

			// 看板移动与阶段校验
			tickets.POST("/:id/move", boardHandler.MoveTicket)
			tickets.GET("/:id/stage-statuses", boardHandler.GetStageStatuses)
			tickets.GET("/:id/stages/:stageId/validation", boardHandler.ValidateStage)

			// 审批
			tickets.POST("/:id/approvals", approvalHandler.RequestApproval)
			tickets.GET("/:id/approvals", approvalHandler.GetApprovalHistory)
			tickets.GET("/:id/approvals/latest", approvalHandler.GetLatestApprovals)
			tickets.POST("/:id/stages/:stageId/approval", approvalHandler.DecideApproval)

			// 任务
			tickets.POST("/:id/tasks", ticketHandler.AddTask)
			tickets.PUT("/:id/tasks/:taskId", ticketHandler.UpdateTask)
			tickets.DELETE("/:id/tasks/:taskId", ticketHandler.DeleteTask)

			// 产品/预算
			tickets.POST("/:id/products", ticketHandler.AddProduct)
			tickets.DELETE("/:id/products/:productId", ticketHandler.DeleteProduct)

			// 活动流与评论
			tickets.GET("/:id/activities", ticketHandler.GetActivities)
			tickets.POST("/:id/comments", ticketHandler.AddComment)
		}

		// 看板统计
		authenticated.GET("/dashboard/stats", dashboardHandler.GetStats)

		// AI自动化
		automations := authenticated.Group("/automations")
		{
			automations.POST("/ai-interpret", aiHandler.Interpret)
			automations.GET("/ai-settings", aiHandler.GetAISettings)
			automations.PUT("/ai-settings", middleware.AdminMiddleware(), aiHandler.ConfigureAI)
		}
	}

	// 看板实时事件（token 通过 query 传递）
	ws := r.Group("/ws")
	ws.Use(middleware.AuthMiddleware(authService))
	{
		ws.GET("", wsHandler.Subscribe)
	}

	// Prometheus Metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check (支持 GET 和 HEAD 方法)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"type":   "api-server",
		})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	// Swagger API documentation (only in debug mode)
	if mode == "debug" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 静态文件由 Nginx 处理，后端不需要提供静态文件服务
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "The requested resource was not found.",
		})
	})

	return r
}
