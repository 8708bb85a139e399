package app

import (
	"log"
	"os"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/config"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/database"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
	pkgredis "github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/redis"
)

// Bootstrap 初始化基础设施（logger, database, redis）
func Bootstrap(cfgPath string) (*config.Config, error) {
	// 支持通过环境变量指定配置文件路径
	if cfgPath == "" {
		cfgPath = os.Getenv("RENDIZY_CONFIG")
		if cfgPath == "" {
			cfgPath = "config/config.yaml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	// Initialize logger
	if err := logger.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize database
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	logger.Infof("Database initialized successfully")

	// Initialize Redis (optional, for funnel cache and move locks)
	if err := pkgredis.Init(&cfg.Redis); err != nil {
		logger.Warnf("Redis initialization failed: %v", err)
		logger.Info("   → Move locks and funnel cache disabled, falling back to database-only mode")
	} else if cfg.Redis.Enabled {
		logger.Infof("Redis initialized successfully - cache and move locks enabled")
	} else {
		logger.Info("Redis is disabled in config - using database-only mode")
	}

	return cfg, nil
}
