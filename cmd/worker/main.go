package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/skyfare/skyfare/config"
	"github.com/skyfare/skyfare/internal/cache"
	"github.com/skyfare/skyfare/internal/email"
	"github.com/skyfare/skyfare/internal/kafka"
	"github.com/skyfare/skyfare/internal/notify"
	"github.com/skyfare/skyfare/internal/repository"
	"github.com/skyfare/skyfare/internal/service/booking"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second,
		time.Duration(cfg.Offers.CacheTTLSeconds)*time.Second,
	)

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)
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

	if err := scheduler.RestoreScheduledReminders(ctx); err != nil {
		log.Error("restore reminders", "error", err)
	}

	emailSender := email.NewSender()

	notificationsConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer notificationsConsumer.Close()

	go func() {
		if err := notificationsConsumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Warn("decode booking event", "error", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Warn("notifications consumer stopped", "error", err)
		}
	}()

	remindersConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.RemindersTopic)
	defer remindersConsumer.Close()

	go func() {
		if err := remindersConsumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.ReminderEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Warn("decode reminder event", "error", err)
				return nil
			}
			return emailSender.SendReminder(ctx, event)
		}); err != nil {
			log.Warn("reminders consumer stopped", "error", err)
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	reminderTicker := time.NewTicker(time.Duration(cfg.Reminders.SweepMinutes) * time.Minute)
	defer reminderTicker.Stop()

	lookahead := time.Duration(cfg.Reminders.LookaheadHours) * time.Hour

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := bookingService.ExpirePendingBookings(ctx)
			if err != nil {
				log.Warn("expire bookings", "error", err)
				continue
			}
			if len(expired) > 0 {
				log.Info("expired bookings", "count", len(expired))
			}
		case <-reminderTicker.C:
			departing, err := bookingRepo.ListConfirmedDeparting(ctx, time.Now().Add(lookahead))
			if err != nil {
				log.Warn("list departing bookings", "error", err)
				continue
			}
			if err := scheduler.SetupBookingReminders(ctx, departing); err != nil {
				log.Warn("schedule reminders", "error", err)
			}
		case s := <-sig:
			log.Info("shutting down", "signal", s.String())
			return
		}
	}
}
