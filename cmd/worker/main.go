package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/parcelbooking/config"
	"github.com/Domenick1991/parcelbooking/internal/kafka"
	"github.com/Domenick1991/parcelbooking/internal/logger"
	"github.com/Domenick1991/parcelbooking/internal/notify"
	"github.com/Domenick1991/parcelbooking/internal/repository"
	"github.com/Domenick1991/parcelbooking/internal/service/messaging"
	"github.com/Domenick1991/parcelbooking/internal/service/settings"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// The worker turns booking events into message log entries.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New("info", "worker").Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Log.Level, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.WithError(err).Error("worker failed")
		os.Exit(1)
	}
	log.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	settingsService := settings.NewSettingsService(repository.NewSettingsRepository(pool),
		settings.WithRefreshInterval(time.Duration(cfg.Worker.SettingsRefreshSeconds)*time.Second),
	)
	messagingService := messaging.NewMessagingService(
		repository.NewMessageRepository(pool),
		settingsService,
		notify.NewLogSender(log),
		log,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingEventsTopic, log)
	defer consumer.Close()

	log.WithField("topic", cfg.Kafka.BookingEventsTopic).Info("worker started")
	if err := consumer.Consume(ctx, kafka.BookingEventHandler(log, messagingService.HandleEvent)); err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	return nil
}
