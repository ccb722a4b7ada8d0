package main

import (
	"context"
	"log"

	"ai-recall-be/internal/bootstrap"
	"ai-recall-be/internal/config"
	"ai-recall-be/internal/model"
	"ai-recall-be/internal/server"
	"ai-recall-be/internal/tracer"
	"ai-recall-be/pkg/database"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Configuration
	cfg := config.Load()

	// 2. Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if err := database.EnsureVectorExtension(gormDB); err != nil {
		log.Panicf("Unable to enable pgvector extension: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Connection{},
		&model.ContentItem{},
		&model.SyncState{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ChatCitation{},
	); err != nil {
		log.Panicf("Unable to migrate schema: %v", err)
	}

	// 3. Dependency container
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Background services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	container.NotificationService.Start()

	// 5. HTTP server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
