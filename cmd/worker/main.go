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
	"github.com/mdiagne/terangabus/config"
	"github.com/mdiagne/terangabus/internal/cache"
	"github.com/mdiagne/terangabus/internal/email"
	"github.com/mdiagne/terangabus/internal/kafka"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/mdiagne/terangabus/internal/service/reservation"
	"github.com/mdiagne/terangabus/internal/ticket"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// The worker owns everything that must not sit on the request path:
// sending notification emails off the Kafka topic and sweeping expired
// pending reservations to a terminal state.
func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Reservation.TripsCacheTTL)*time.Second)

	tripRepo := repository.NewTripRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	reservationService := reservation.NewReservationService(
		reservationRepo,
		tripRepo,
		userRepo,
		redisCache,
		producer,
		ticket.NewRenderer(),
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Reservation.HoldTTLMinutes)*time.Minute,
		log,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	transport := email.NewTransport(cfg.Email, log)
	sender := email.NewSender(transport, cfg.Email.FrontendURL)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.NotificationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.WithError(err).Warn("decode notification event")
				return nil
			}
			if err := sender.SendNotification(ctx, event); err != nil {
				// notification failures never block the consumer
				log.WithError(err).WithField("code", event.Code).Warn("notification email failed")
			}
			return nil
		}); err != nil {
			log.WithError(err).Info("consumer stopped")
		}
	}()

	sweepEvery := time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute
	if sweepEvery == 0 {
		sweepEvery = time.Minute
	}
	expireTicker := time.NewTicker(sweepEvery)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := reservationService.ExpirePendingReservations(ctx)
			if err != nil {
				log.WithError(err).Error("expire reservations")
				continue
			}
			if len(expired) > 0 {
				log.WithField("count", len(expired)).Info("expired pending reservations")
			}
		case s := <-sig:
			log.WithField("signal", s.String()).Info("shutting down")
			return
		}
	}
}
