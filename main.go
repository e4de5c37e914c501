package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"certdesk/clients/appreciationClient"
	"certdesk/clients/certificateClient"
	"certdesk/config"
	controllers "certdesk/controllers/workspace"
	"certdesk/logger"
	workspaceRoutes "certdesk/routers/workspaceRoutes"
	"certdesk/session"
	"certdesk/utils"

	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	certificates, err := certificateClient.New(appLog, certificateClient.Config{
		BaseURL: cfg.CertificateServiceURL,
		Timeout: cfg.RequestTimeout(),
	})
	if err != nil {
		appLog.Fatal("Failed to create certificate client", "error", err)
	}
	appreciation, err := appreciationClient.New(appLog, appreciationClient.Config{
		BaseURL: cfg.AppreciationServiceURL,
		Timeout: cfg.RequestTimeout(),
	})
	if err != nil {
		appLog.Fatal("Failed to create appreciation client", "error", err)
	}

	store := session.NewStore(appLog, session.Backends{
		Appreciation: appreciation,
		Issuer:       certificates,
		Verifier:     certificates,
	})
	janitor, err := utils.InitializeSessionJanitor(appLog, store, cfg.WorkspaceJanitorSchedule, cfg.WorkspaceIdle())
	if err != nil {
		appLog.Fatal("Failed to start workspace janitor", "error", err)
	}

	app := workspaceRoutes.NewApp()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	workspaceRoutes.SetupWorkspaceRoutes(app, controllers.NewHandler(appLog, store, certificates))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		appLog.Info("Shutting down")
		<-janitor.Stop().Done()
		_ = app.Shutdown()
	}()

	appLog.Info("Server is running", "port", cfg.Port,
		"certificate_service", cfg.CertificateServiceURL,
		"appreciation_service", cfg.AppreciationServiceURL)
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Fatal("Server stopped", "error", err)
	}
}
