// Command notifier consumes lifecycle events from NATS JetStream and sends
// the matching emails. Run it with NOTIFICATIONS_IN_PROCESS=false on the API.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"carematch-be/internal/bootstrap"
	"carematch-be/internal/config"
	"carematch-be/pkg/database"

	pktNats "carematch-be/pkg/nats"

	"gorm.io/gorm"
)

const durableName = "carematch-notifier"

func main() {
	cfg := config.Load()

	var db *gorm.DB
	if cfg.Database.Driver != "memory" {
		var err error
		db, err = database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "production")
		if err != nil {
			log.Fatalf("Unable to connect to GORM DB: %v", err)
		}
	}

	container := bootstrap.NewContainer(db, cfg)
	defer container.Close()

	subscriber, err := pktNats.NewSubscriber(cfg.App.NatsURL, container.Logger)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer subscriber.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := subscriber.Subscribe(ctx, pktNats.Subject(">"), durableName, container.NotificationService.HandleEvent); err != nil {
		log.Fatalf("Unable to subscribe: %v", err)
	}

	log.Println("Notifier is running")
	<-ctx.Done()
	log.Println("Notifier stopped")
}
