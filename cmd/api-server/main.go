package main

import (
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/app"
)

// @title           Rendizy CRM API
// @version         1.0
// @description     Rendizy 多租户漏斗看板与阶段流程 API 文档

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize application
	application, err := app.Initialize("")
	if err != nil {
		panic(err)
	}

	// Start server
	app.StartServer(application)
}
