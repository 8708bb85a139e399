package app

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/notification"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/realtime"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/config"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/database"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
)

// App 应用程序上下文
type App struct {
	Config              *config.Config
	Repos               *Repositories
	Services            *Services
	BackgroundServices  *BackgroundServices
	Handlers            *Handlers
	Hub                 *realtime.Hub
	NotificationManager *notification.Manager
}

// Initialize 初始化应用程序
func Initialize(cfgPath string) (*App, error) {
	// 1. Bootstrap (logger, database, redis)
	cfg, err := Bootstrap(cfgPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			database.Close()
		}
	}()

	// 2. Initialize repositories
	repos := InitializeRepositories()
	logger.Infof("Repositories initialized")

	// 3. Initialize notification manager
	notificationMgr := InitializeNotificationManager(cfg)
	logger.Infof("Notification Manager initialized")

	// 4. Initialize realtime hub (board websocket events)
	hub := realtime.NewHub()
	go hub.Run()
	logger.Infof("Realtime hub started")

	// 5. Initialize services
	services := InitializeServices(repos, cfg, notificationMgr, hub)
	logger.Infof("Services initialized")

	// 6. Initialize background services
	backgroundServices := InitializeBackgroundServices(repos, cfg, notificationMgr, hub)
	if err := backgroundServices.SLA.Start(); err != nil {
		logger.Warnf("SLA monitor failed to start: %v", err)
	}
	logger.Infof("Background services initialized")

	// 7. Initialize handlers
	handlers := InitializeHandlers(repos, services, hub)
	logger.Infof("Handlers initialized")

	return &App{
		Config:              cfg,
		Repos:               repos,
		Services:            services,
		BackgroundServices:  backgroundServices,
		Handlers:            handlers,
		Hub:                 hub,
		NotificationManager: notificationMgr,
	}, nil
}
