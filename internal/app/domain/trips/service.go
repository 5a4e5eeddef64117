// Package trips orchestrates the itinerary lifecycle: generation and edit
// requests flow through the monetization gate, authorized work runs against
// the generative planner and the itinerary editor, and every result commits
// as a whole trip snapshot.
package trips

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/voyager/internal/app/domain/billing"
	"github.com/FACorreiaa/voyager/internal/app/domain/booking"
	"github.com/FACorreiaa/voyager/internal/app/domain/itinerary"
	"github.com/FACorreiaa/voyager/internal/app/models"
	"github.com/FACorreiaa/voyager/internal/app/observability/metrics"
)

// defaultCoverImage decorates freshly generated trips until a real cover
// pipeline exists.
const defaultCoverImage = "https://images.unsplash.com/photo-1469854523086-cc02fe5d8800?auto=format&fit=crop&w=1200&q=80"

// Generator is the planner capability the service depends on.
type Generator interface {
	GenerateTrip(ctx context.Context, req models.TripRequest) (models.Trip, error)
	EditTrip(ctx context.Context, trip models.Trip, instruction string) (models.Trip, error)
}

type Service struct {
	store   *Store
	gate    *billing.Gate
	planner Generator
	logger  *zap.Logger
}

func NewService(store *Store, gate *billing.Gate, planner Generator, logger *zap.Logger) *Service {
	return &Service{
		store:   store,
		gate:    gate,
		planner: planner,
		logger:  logger,
	}
}

// List returns all trips, newest first.
func (s *Service) List() []models.Trip {
	return s.store.List()
}

// Get returns one trip by id.
func (s *Service) Get(id uuid.UUID) (models.Trip, error) {
	return s.store.Get(id)
}

// Delete removes a trip.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Remove(ctx, id)
}

// Generate runs a trip generation through the monetization gate. When the
// gate authorizes immediately the returned decision carries the committed
// trip; otherwise it carries the payment details the client needs.
func (s *Service) Generate(ctx context.Context, req models.TripRequest) (billing.Decision, error) {
	if err := req.Validate(); err != nil {
		return billing.Decision{}, err
	}

	execute := func(ctx context.Context) (models.Trip, error) {
		generated, err := s.planner.GenerateTrip(ctx, req)
		if err != nil {
			return models.Trip{}, err
		}

		trip := s.finalizeGenerated(generated)
		if err := s.store.Upsert(ctx, trip); err != nil {
			return models.Trip{}, err
		}

		metrics.Get().TripGenerationsTotal.Add(ctx, 1)
		s.logger.Info("Trip committed",
			zap.String("trip_id", trip.ID.String()),
			zap.String("destination", trip.Destination),
		)
		return trip, nil
	}

	return s.gate.RequestGeneration(ctx, execute)
}

// Edit runs a free-text AI edit through the monetization gate. The trip is
// re-read at execution time so a payment-deferred edit applies to the
// latest committed state.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, instruction string) (billing.Decision, error) {
	if strings.TrimSpace(instruction) == "" {
		return billing.Decision{}, fmt.Errorf("%w: edit instruction is empty", models.ErrValidation)
	}

	trip, err := s.store.Get(id)
	if err != nil {
		return billing.Decision{}, err
	}

	execute := func(ctx context.Context) (models.Trip, error) {
		current, err := s.store.Get(id)
		if err != nil {
			return models.Trip{}, err
		}

		replacement, err := s.planner.EditTrip(ctx, current, instruction)
		if err != nil {
			return models.Trip{}, err
		}

		updated, err := itinerary.ApplyGeneratedEdit(current, replacement)
		if err != nil {
			return models.Trip{}, err
		}

		if err := s.store.Upsert(ctx, updated); err != nil {
			return models.Trip{}, err
		}

		metrics.Get().TripEditsTotal.Add(ctx, 1)
		s.logger.Info("Edit committed",
			zap.String("trip_id", updated.ID.String()),
			zap.Int("edit_count", updated.EditCount),
		)
		return updated, nil
	}

	return s.gate.RequestEdit(ctx, trip.EditCount, execute)
}

// ConfirmRequest releases a payment-gated request after its payment
// succeeded and returns the committed trip.
func (s *Service) ConfirmRequest(ctx context.Context, requestID uuid.UUID) (models.Trip, error) {
	return s.gate.Confirm(ctx, requestID)
}

// CancelRequest declines a pending gated request.
func (s *Service) CancelRequest(requestID uuid.UUID) error {
	return s.gate.Cancel(requestID)
}

// InsertActivity splices a manual activity into one day of a trip. Manual
// insertions bypass the gate: they never touch the generative capability.
func (s *Service) InsertActivity(ctx context.Context, id uuid.UUID, dayIndex int, activity models.Activity) (models.Trip, error) {
	trip, err := s.store.Get(id)
	if err != nil {
		return models.Trip{}, err
	}

	updated, err := itinerary.InsertManualActivity(trip, dayIndex, activity)
	if err != nil {
		return models.Trip{}, err
	}

	if err := s.store.Upsert(ctx, updated); err != nil {
		return models.Trip{}, err
	}

	metrics.Get().ManualInsertsTotal.Add(ctx, 1)
	return updated, nil
}

// BookingLink resolves the booking link for one activity of a trip.
func (s *Service) BookingLink(id uuid.UUID, dayIndex, activityIndex int) (string, bool, error) {
	trip, err := s.store.Get(id)
	if err != nil {
		return "", false, err
	}
	if dayIndex < 1 || dayIndex > len(trip.Itinerary) {
		return "", false, fmt.Errorf("%w: day %d of %d", models.ErrRange, dayIndex, len(trip.Itinerary))
	}
	day := trip.Itinerary[dayIndex-1]
	if activityIndex < 0 || activityIndex >= len(day.Activities) {
		return "", false, fmt.Errorf("%w: activity %d of %d", models.ErrRange, activityIndex, len(day.Activities))
	}

	link, ok := booking.Resolve(day.Activities[activityIndex], trip.StartDate, trip.EndDate)
	return link, ok, nil
}

// finalizeGenerated assigns the fields the generator never returns.
func (s *Service) finalizeGenerated(generated models.Trip) models.Trip {
	trip := generated
	trip.ID = uuid.New()
	trip.ImageURL = defaultCoverImage
	trip.Sources = []models.GroundingLink{}
	trip.EditCount = 0
	return trip
}
