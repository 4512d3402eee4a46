package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/skyfare/skyfare/config"
	"github.com/skyfare/skyfare/internal/bootstrap"
	"github.com/skyfare/skyfare/internal/cache"
	"github.com/skyfare/skyfare/internal/kafka"
	"github.com/skyfare/skyfare/internal/notify"
	"github.com/skyfare/skyfare/internal/repository"
	"github.com/skyfare/skyfare/internal/service/booking"
	"github.com/skyfare/skyfare/internal/service/flights"
	"github.com/skyfare/skyfare/internal/service/offers"
	"github.com/skyfare/skyfare/internal/service/reminder"
	"github.com/skyfare/skyfare/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second,
		time.Duration(cfg.Offers.CacheTTLSeconds)*time.Second,
	)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)

	flightService := flights.NewFlightService(flightRepo, redisCache)
	offerService := offers.NewOfferService(offerRepo, flightRepo, redisCache)

	notifier := notify.NewKafkaNotifier(producer, cfg.Kafka.RemindersTopic)
	scheduler := reminder.NewScheduler(redisCache, notifier, log,
		reminder.WithLeadHours(cfg.Reminders.LeadHours),
	)
	defer scheduler.Stop()

	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		redisCache,
		producer,
		log,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.ConfirmationTTL)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithPricer(offerService),
		booking.WithReminders(scheduler),
		booking.WithRefundWindow(time.Duration(cfg.Booking.RefundWindowHours)*time.Hour),
	)

	if err := bootstrap.Run(ctx, cfg, flightService, bookingService, offerService); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
