package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mdiagne/terangabus/api"
	"github.com/mdiagne/terangabus/api/middleware"
	"github.com/mdiagne/terangabus/config"
	"github.com/mdiagne/terangabus/internal/repository"
	"github.com/mdiagne/terangabus/internal/service/auth"
	"github.com/mdiagne/terangabus/internal/service/reservation"
	"github.com/mdiagne/terangabus/internal/service/trips"
	"github.com/mdiagne/terangabus/internal/service/verification"
	"github.com/mdiagne/terangabus/internal/validate"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Trips        trips.TripUseCase
	Reservations reservation.ReservationUseCase
	Verification *verification.Service
	Auth         *auth.Service
	Issuer       *auth.Issuer
	Contacts     repository.ContactRepository
	Validator    *validate.Validator
	Log          *logrus.Logger
}

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, deps),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(deps.Log))
	router.Use(corsMiddleware(cfg.CORS))

	limiter := middleware.NewRateLimiter(rate.Limit(10), 30, 10*time.Minute)
	router.Use(limiter.Middleware())

	tripHandler := api.NewTripHandler(deps.Trips, deps.Log)
	reservationHandler := api.NewReservationHandler(deps.Reservations, deps.Log)
	verificationHandler := api.NewVerificationHandler(deps.Verification, cfg.Email.FrontendURL, deps.Log)
	authHandler := api.NewAuthHandler(deps.Auth, deps.Log)
	contactHandler := api.NewContactHandler(deps.Contacts, deps.Validator, deps.Log)

	public := router.Group("/public")
	tripHandler.Register(public)

	root := router.Group("")
	reservationHandler.RegisterPublic(root)
	verificationHandler.RegisterPublic(root)
	authHandler.Register(root)
	contactHandler.Register(root)

	authed := router.Group("", middleware.RequireAuth(deps.Issuer))
	reservationHandler.Register(authed.Group("/reservations"))
	verificationHandler.Register(authed)

	api.RegisterDocs(router)

	return router
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsCfg.AllowCredentials = true
	corsCfg.MaxAge = 12 * time.Hour
	return cors.New(corsCfg)
}
