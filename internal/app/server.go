package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/api/router"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/database"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
	pkgredis "github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/redis"
)

// StartServer 启动 HTTP 服务器并阻塞到收到退出信号
func StartServer(a *App) {
	cfg := a.Config

	// Setup router
	r := router.Setup(
		a.Handlers.Auth,
		a.Handlers.Organization,
		a.Handlers.Setting,
		a.Handlers.Funnel,
		a.Handlers.Board,
		a.Handlers.Ticket,
		a.Handlers.Approval,
		a.Handlers.Dashboard,
		a.Handlers.AI,
		a.Handlers.WS,
		a.Services.Auth,
		cfg.Server.Mode,
	)

	// Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.APIPort)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	printStartupBanner(cfg.Server.APIPort)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Infof("\nShutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// 1. Shutdown HTTP server
	logger.Infof("  → Stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Infof("  Warning: HTTP server shutdown error: %v", err)
	} else {
		logger.Infof("  ✓ HTTP server stopped")
	}

	// 2. Stop SLA monitor (waits for in-flight scan)
	logger.Infof("  → Stopping SLA monitor...")
	a.BackgroundServices.SLA.Stop()
	logger.Infof("  ✓ SLA monitor stopped")

	// 3. Stop realtime hub (closes board subscriptions)
	logger.Infof("  → Stopping realtime hub...")
	a.Hub.Stop()
	logger.Infof("  ✓ Realtime hub stopped")

	// 4. Close database
	logger.Infof("  → Closing database...")
	database.Close()
	logger.Infof("  ✓ Database closed")

	// 5. Close Redis if enabled
	if cfg.Redis.Enabled {
		logger.Infof("  → Closing Redis...")
		pkgredis.Close()
		logger.Infof("  ✓ Redis closed")
	}

	logger.Infof("")
	logger.Infof("Shutdown complete")
	logger.Infof("")
}

// printStartupBanner 打印启动横幅
func printStartupBanner(apiPort int) {
	logger.Infof("")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("Rendizy CRM Server - Funnel Board & Stage Workflow")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("")
	logger.Infof("Features:")
	logger.Infof("   • Multi-tenant funnels with configurable stages")
	logger.Infof("   • Kanban board with stage requirement validation")
	logger.Infof("   • Stage approval workflow with append-only audit log")
	logger.Infof("   • SLA monitoring and webhook notifications")
	logger.Infof("   • Realtime board events over WebSocket")
	logger.Infof("   • AI-assisted automation definitions")
	logger.Infof("")
	logger.Infof("   API       - http://localhost:%d/api/v1", apiPort)
	logger.Infof("   Metrics   - http://localhost:%d/metrics", apiPort)
	logger.Infof("   WebSocket - ws://localhost:%d/ws", apiPort)
	logger.Infof("")
	logger.Infof("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Infof("")
}
