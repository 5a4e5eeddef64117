package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/FACorreiaa/voyager/internal/app/domain/billing"
	"github.com/FACorreiaa/voyager/internal/app/domain/planner"
	"github.com/FACorreiaa/voyager/internal/app/domain/trips"
	"github.com/FACorreiaa/voyager/internal/pkg/config"
)

type AppHandlers struct {
	Trips *trips.TripsHandlers
}

// Setup wires the domain services and registers every route on the router.
func Setup(r *gin.Engine, cfg *config.Config, dbPool *pgxpool.Pool, log *zap.Logger) error {
	handlers, err := setupDependencies(cfg, dbPool, log)
	if err != nil {
		return err
	}
	setupRouter(r, handlers)
	return nil
}

func setupDependencies(cfg *config.Config, dbPool *pgxpool.Pool, log *zap.Logger) (*AppHandlers, error) {
	ctx := context.Background()

	store, err := trips.LoadStore(ctx, dbPool, log)
	if err != nil {
		return nil, err
	}

	trialState, err := billing.LoadTrialState(ctx, dbPool, log)
	if err != nil {
		return nil, err
	}

	var payments billing.PaymentProvider
	if cfg.StripeAPIKey != "" {
		payments = billing.NewStripeProvider(cfg.StripeAPIKey)
	} else {
		payments = billing.NewOfflineProvider(log)
	}
	gate := billing.NewGate(trialState, payments, cfg.Pricing, log)

	plannerService, err := planner.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		return nil, err
	}

	tripService := trips.NewService(store, gate, plannerService, log)

	return &AppHandlers{
		Trips: trips.NewTripsHandlers(tripService, log),
	}, nil
}

func setupRouter(r *gin.Engine, h *AppHandlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/trips", h.Trips.HandleList)
		api.POST("/trips", h.Trips.HandleGenerate)
		api.GET("/trips/:id", h.Trips.HandleGet)
		api.DELETE("/trips/:id", h.Trips.HandleDelete)

		api.POST("/trips/:id/edits", h.Trips.HandleEdit)
		api.POST("/trips/:id/days/:day/activities", h.Trips.HandleInsertActivity)
		api.GET("/trips/:id/days/:day/activities/:idx/booking-link", h.Trips.HandleBookingLink)

		api.POST("/requests/:id/confirm", h.Trips.HandleConfirm)
		api.POST("/requests/:id/cancel", h.Trips.HandleCancel)
	}
}
