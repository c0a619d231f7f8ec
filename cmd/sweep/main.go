// Command sweep runs one expiry pass over stale match requests and pending
// payments. It is meant for cron; the API process also sweeps on a ticker.
package main

import (
	"context"
	"os"
	"time"

	"carematch-be/internal/bootstrap"
	"carematch-be/internal/config"
	"carematch-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	var db *gorm.DB
	if cfg.Database.Driver != "memory" {
		var err error
		db, err = database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "production")
		if err != nil {
			color.Red("Failed to connect to database: %v", err)
			os.Exit(1)
		}
	}

	container := bootstrap.NewContainer(db, cfg)
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	color.Cyan("Running lifecycle sweep...")
	result, err := container.SweeperService.SweepOnce(ctx)
	if err != nil {
		color.Red("Sweep failed: %v", err)
		os.Exit(1)
	}

	if result.Skipped {
		color.Yellow("Another instance holds the sweep lock, nothing done")
		return
	}

	color.Green("Expired match requests: %d", result.ExpiredRequests)
	color.Green("Expired pending payments: %d", result.ExpiredPayments)
}
