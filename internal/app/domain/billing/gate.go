// Package billing decides whether an AI mutation runs free or waits on a
// paid confirmation. The first-ever generation is free (one-time trial);
// each trip carries a small free-edit allowance; everything past that is
// held until the payment capability reports success.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/FACorreiaa/voyager/internal/app/models"
	"github.com/FACorreiaa/voyager/internal/app/observability/metrics"
	"github.com/FACorreiaa/voyager/internal/pkg/config"
)

// Kind identifies the gated operation.
type Kind string

const (
	KindGeneration Kind = "generation"
	KindEdit       Kind = "edit"
)

// Status is the observable state of a gated request.
type Status string

const (
	StatusAuthorized      Status = "AUTHORIZED"
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
)

// ExecuteFunc performs the gated action once authorized and returns the
// committed trip. It must be all-or-nothing: on error, no state changed.
type ExecuteFunc func(ctx context.Context) (models.Trip, error)

// Decision is the gate's answer for one mutating-intent request. Either the
// action already executed (Trip set) or it is parked behind a payment
// (RequestID/AmountCents/ClientSecret set).
type Decision struct {
	Status       Status    `json:"status"`
	Trip         *models.Trip `json:"trip,omitempty"`
	RequestID    uuid.UUID `json:"request_id,omitempty"`
	AmountCents  int64     `json:"amount_cents,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
}

type pendingRequest struct {
	id              uuid.UUID
	kind            Kind
	amountCents     int64
	paymentIntentID string
	execute         ExecuteFunc
}

// pendingTTL bounds how long an unconfirmed request survives. Expiry
// behaves like a decline: the user must re-initiate.
const pendingTTL = 30 * time.Minute

// Gate is the monetization gate. One instance serves the whole process;
// fresh TrialState per test case keeps tests clean.
type Gate struct {
	state    TrialState
	payments PaymentProvider
	pricing  config.PricingConfig
	pending  *cache.Cache
	logger   *zap.Logger
}

func NewGate(state TrialState, payments PaymentProvider, pricing config.PricingConfig, logger *zap.Logger) *Gate {
	return &Gate{
		state:    state,
		payments: payments,
		pricing:  pricing,
		pending:  cache.New(pendingTTL, 10*time.Minute),
		logger:   logger,
	}
}

// RequestGeneration gates a trip generation. The one-time free trial admits
// the first generation; the flag flips permanently only after that
// generation commits.
func (g *Gate) RequestGeneration(ctx context.Context, execute ExecuteFunc) (Decision, error) {
	if !g.state.FreeTrialUsed() {
		trip, err := execute(ctx)
		if err != nil {
			return Decision{}, err
		}
		if err := g.state.MarkFreeTrialUsed(ctx); err != nil {
			// The trip is already committed; an unset flag only risks one
			// extra free generation, so log instead of failing the request.
			g.logger.Error("Failed to persist free trial flag", zap.Error(err))
		}
		g.logger.Info("Generation authorized via free trial")
		return Decision{Status: StatusAuthorized, Trip: &trip}, nil
	}
	return g.hold(ctx, KindGeneration, g.pricing.GenerationCents, execute)
}

// RequestEdit gates an AI edit on a trip with the given edit count. The
// first FreeEditsPerTrip edits on each trip are free, independent of other
// trips.
func (g *Gate) RequestEdit(ctx context.Context, editCount int, execute ExecuteFunc) (Decision, error) {
	if editCount < g.pricing.FreeEditsPerTrip {
		trip, err := execute(ctx)
		if err != nil {
			return Decision{}, err
		}
		g.logger.Info("Edit authorized within free allowance", zap.Int("edit_count", editCount))
		return Decision{Status: StatusAuthorized, Trip: &trip}, nil
	}
	return g.hold(ctx, KindEdit, g.pricing.EditCents, execute)
}

// hold parks a request behind a payment intent. The payment capability is
// invoked exactly once here; confirmation later only polls the status.
func (g *Gate) hold(ctx context.Context, kind Kind, amountCents int64, execute ExecuteFunc) (Decision, error) {
	requestID := uuid.New()
	intentID, clientSecret, err := g.payments.CreatePaymentIntent(amountCents, g.pricing.Currency, map[string]string{
		"request_id": requestID.String(),
		"kind":       string(kind),
	})
	if err != nil {
		return Decision{}, fmt.Errorf("creating payment intent: %w", err)
	}

	metrics.Get().PaymentsTotal.Add(ctx, 1)

	g.pending.Set(requestID.String(), &pendingRequest{
		id:              requestID,
		kind:            kind,
		amountCents:     amountCents,
		paymentIntentID: intentID,
		execute:         execute,
	}, cache.DefaultExpiration)

	g.logger.Info("Request awaiting payment",
		zap.String("request_id", requestID.String()),
		zap.String("kind", string(kind)),
		zap.Int64("amount_cents", amountCents),
	)

	return Decision{
		Status:       StatusAwaitingPayment,
		RequestID:    requestID,
		AmountCents:  amountCents,
		Currency:     g.pricing.Currency,
		ClientSecret: clientSecret,
	}, nil
}

// Confirm releases a pending request after its payment succeeded and runs
// the parked action exactly once. A payment that has not succeeded leaves
// the request pending; a validation rejection closes it for good.
func (g *Gate) Confirm(ctx context.Context, requestID uuid.UUID) (models.Trip, error) {
	entry, found := g.pending.Get(requestID.String())
	if !found {
		return models.Trip{}, fmt.Errorf("%w: %s", models.ErrRequestClosed, requestID)
	}
	req := entry.(*pendingRequest)

	status, err := g.payments.GetPaymentStatus(req.paymentIntentID)
	if err != nil {
		return models.Trip{}, fmt.Errorf("checking payment status: %w", err)
	}
	if status != "succeeded" {
		return models.Trip{}, fmt.Errorf("%w: payment status %q", models.ErrPaymentRequired, status)
	}

	// Remove before executing so the callback cannot run twice.
	g.pending.Delete(requestID.String())

	trip, err := req.execute(ctx)
	if err != nil {
		g.logger.Warn("Paid request failed during execution",
			zap.String("request_id", requestID.String()),
			zap.Error(err),
		)
		return models.Trip{}, err
	}

	g.logger.Info("Paid request executed",
		zap.String("request_id", requestID.String()),
		zap.String("kind", string(req.kind)),
	)
	return trip, nil
}

// Cancel declines a pending request. Terminal: the user must re-initiate.
func (g *Gate) Cancel(requestID uuid.UUID) error {
	if _, found := g.pending.Get(requestID.String()); !found {
		return fmt.Errorf("%w: %s", models.ErrRequestClosed, requestID)
	}
	g.pending.Delete(requestID.String())
	g.logger.Info("Request cancelled", zap.String("request_id", requestID.String()))
	return nil
}
