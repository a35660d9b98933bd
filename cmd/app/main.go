package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/Domenick1991/parcelbooking/api"
	"github.com/Domenick1991/parcelbooking/config"
	"github.com/Domenick1991/parcelbooking/internal/auth"
	"github.com/Domenick1991/parcelbooking/internal/bootstrap"
	"github.com/Domenick1991/parcelbooking/internal/cache"
	"github.com/Domenick1991/parcelbooking/internal/kafka"
	"github.com/Domenick1991/parcelbooking/internal/logger"
	"github.com/Domenick1991/parcelbooking/internal/notify"
	"github.com/Domenick1991/parcelbooking/internal/repository"
	"github.com/Domenick1991/parcelbooking/internal/service/booking"
	"github.com/Domenick1991/parcelbooking/internal/service/contact"
	"github.com/Domenick1991/parcelbooking/internal/service/location"
	"github.com/Domenick1991/parcelbooking/internal/service/messaging"
	"github.com/Domenick1991/parcelbooking/internal/service/pricing"
	"github.com/Domenick1991/parcelbooking/internal/service/settings"
	"github.com/Domenick1991/parcelbooking/internal/service/tracking"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of the given admin password and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New("info", "app").Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Log.Level, "app")
	if log.GetLevel().String() != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.WithError(err).Error("app failed")
		os.Exit(1)
	}
	log.Info("stopped")
}

// run owns every connection it opens and closes them before returning.
func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.LocationsCacheTTL())
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	loc, err := cfg.Booking.Location()
	if err != nil {
		return fmt.Errorf("booking timezone: %w", err)
	}

	bookingRepo := repository.NewBookingRepository(pool)

	settingsService := settings.NewSettingsService(repository.NewSettingsRepository(pool))
	locationService := location.NewLocationService(repository.NewLocationRepository(pool),
		location.WithCache(redisCache),
		location.WithLogger(log),
	)
	pricingService := pricing.NewPricingService(locationService, repository.NewPricingRepository(pool))
	generator := tracking.NewGenerator(bookingRepo,
		tracking.WithSequenceHint(redisCache),
		tracking.WithLocation(loc),
		tracking.WithLogger(log),
	)
	bookingService := booking.NewBookingService(bookingRepo, generator,
		booking.WithQuoter(pricingService),
		booking.WithAreaResolver(locationService),
		booking.WithSettings(settingsService),
		booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
		booking.WithTrackingIDAttempts(cfg.Booking.TrackingIDAttempts),
		booking.WithLogger(log),
	)
	contactService := contact.NewContactService(repository.NewContactRepository(pool))
	messagingService := messaging.NewMessagingService(repository.NewMessageRepository(pool), settingsService, notify.NewLogSender(log), log)
	authenticator := auth.NewAuthenticator(cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL(),
		auth.WithAttemptLimit(redisCache, cfg.Auth.MaxLoginAttempts, cfg.Auth.LockoutWindow()),
		auth.WithLogger(log),
	)

	router := api.NewRouter(api.Handlers{
		Bookings:  api.NewBookingHandler(bookingService, locationService, settingsService, loc, log),
		Locations: api.NewLocationHandler(locationService, log),
		Pricing:   api.NewPricingHandler(pricingService, log),
		Contact:   api.NewContactHandler(contactService, log),
		Messaging: api.NewMessagingHandler(messagingService, log),
		Settings:  api.NewSettingsHandler(settingsService, log),
		Auth:      api.NewAuthHandler(authenticator, log),
	}, api.RouterOptions{
		Verifier:    authenticator,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		HealthChecks: map[string]api.HealthCheck{
			"postgres": pool.Ping,
			"redis":    redisCache.Ping,
		},
		Log: log,
	})

	if err := bootstrap.Run(ctx, cfg, router, log); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
