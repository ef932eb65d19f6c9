package main

import (
	"context"
	"log"

	"marketplace-billing-be/internal/bootstrap"
	"marketplace-billing-be/internal/config"
	"marketplace-billing-be/pkg/database"
)

// One-shot expiration sweep, meant to run from cron. The Redis lease inside
// SweepExpirations keeps overlapping invocations harmless.
func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	count, err := container.SubscriptionService.SweepExpirations(context.Background())
	if err != nil {
		log.Fatalf("Error: sweep failed: %v", err)
	}

	log.Printf("✅ Sweep completed: %d subscriptions expired", count)
}
