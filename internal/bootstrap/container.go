package bootstrap

import (
	"context"
	"log"

	"collab-workspace-be/internal/config"
	"collab-workspace-be/internal/controller"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/pkg/mailer"
	"collab-workspace-be/internal/repository/unitofwork"
	"collab-workspace-be/internal/service"
	"collab-workspace-be/internal/websocket"
	"collab-workspace-be/pkg/feed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WorkspaceController    controller.IWorkspaceController
	FolderController       controller.IFolderController
	FileController         controller.IFileController
	CollaboratorController controller.ICollaboratorController
	RealtimeController     controller.IRealtimeController

	// Change feed transport, exposed so main can close it on shutdown.
	FeedBus feed.Bus

	// WebSocket relay
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Change Feed
	// JetStream when NATS is reachable; the in-process bus keeps a single
	// node fully functional without it.
	var bus feed.Bus
	natsBus, err := feed.NewNatsBus(cfg.App.NatsURL, "catalog-feed")
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS, falling back to in-process feed: %v", err)
		bus = feed.NewChannelBus()
	} else {
		bus = natsBus
	}

	// 3. Redis (cross-instance relay fanout)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, relay is single-instance: %v", err)
		rdb = nil
	}

	// 4. WebSocket Relay Hub
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	workspaceService := service.NewWorkspaceService(uowFactory, bus, sysLogger)
	folderService := service.NewFolderService(uowFactory, bus, sysLogger)
	fileService := service.NewFileService(uowFactory, bus, sysLogger)
	collaboratorService := service.NewCollaboratorService(uowFactory, bus, emailService, sysLogger)

	// 6. Controllers
	return &Container{
		WorkspaceController:    controller.NewWorkspaceController(workspaceService),
		FolderController:       controller.NewFolderController(folderService),
		FileController:         controller.NewFileController(fileService),
		CollaboratorController: controller.NewCollaboratorController(collaboratorService),
		RealtimeController:     controller.NewRealtimeController(wsHub),

		FeedBus:      bus,
		WebSocketHub: wsHub,
		Logger:       sysLogger,
	}
}
