package main

import (
	"context"
	"log"

	"collab-workspace-be/internal/bootstrap"
	"collab-workspace-be/internal/config"
	"collab-workspace-be/internal/server"
	"collab-workspace-be/internal/tracer"
	"collab-workspace-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.FeedBus.Close()

	color.Cyan("collab-workspace-be")
	color.Green("environment: %s", cfg.App.Environment)

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
