package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/mdiagne/terangabus/config"
	"github.com/mdiagne/terangabus/internal/bootstrap"
	"github.com/mdiagne/terangabus/internal/cache"
	"github.com/mdiagne/terangabus/internal/email"
	"github.com/mdiagne/terangabus/internal/kafka"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/mdiagne/terangabus/internal/service/auth"
	"github.com/mdiagne/terangabus/internal/service/reservation"
	"github.com/mdiagne/terangabus/internal/service/trips"
	"github.com/mdiagne/terangabus/internal/service/verification"
	"github.com/mdiagne/terangabus/internal/sms"
	"github.com/mdiagne/terangabus/internal/ticket"
	"github.com/mdiagne/terangabus/internal/validate"
	"github.com/sirupsen/logrus"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Reservation.TripsCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	transport := email.NewTransport(cfg.Email, log)
	sender := email.NewSender(transport, cfg.Email.FrontendURL)
	smsSender := sms.NewSender(cfg.SMS, log)
	validator := validate.New(log)

	tripRepo := repository.NewTripRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	contactRepo := repository.NewContactRepository(pool)

	tripService := trips.NewTripService(tripRepo, redisCache, log)
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
	verificationService := verification.NewService(
		userRepo,
		tokenRepo,
		sender,
		smsSender,
		redisCache,
		time.Duration(cfg.Reservation.TokenTTLHours)*time.Hour,
		int64(cfg.Reservation.ResendMaxPerHour),
		cfg.Production(),
		log,
	)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	authService := auth.NewService(userRepo, verificationService, issuer, validator, log)

	if err := bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Trips:        tripService,
		Reservations: reservationService,
		Verification: verificationService,
		Auth:         authService,
		Issuer:       issuer,
		Contacts:     contactRepo,
		Validator:    validator,
		Log:          log,
	}); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
