// Package planner is the boundary to the generative capability. It builds
// prompts, invokes Gemini, and validates the shape of whatever comes back.
// Content correctness is never trusted; structure always is checked.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/voyager/internal/app/models"
	"github.com/FACorreiaa/voyager/internal/app/observability/metrics"
)

type Service struct {
	gen    contentGenerator
	logger *zap.Logger
}

func NewService(gen contentGenerator, logger *zap.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// NewGeminiService wires the service to a real Gemini client.
func NewGeminiService(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Service, error) {
	client, err := NewGeminiClient(ctx, apiKey, model)
	if err != nil {
		return nil, err
	}
	return NewService(client, logger), nil
}

// GenerateTrip asks the generator for a fresh itinerary and validates it.
// The returned trip carries no id, image, or sources; the caller assigns
// those on receipt.
func (s *Service) GenerateTrip(ctx context.Context, req models.TripRequest) (models.Trip, error) {
	start := time.Now()
	raw, err := s.gen.generate(ctx, generationPrompt(req))
	metrics.Get().GenerationDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return models.Trip{}, fmt.Errorf("%w: %v", models.ErrGeneration, err)
	}

	trip, err := decodeGeneratedTrip(raw)
	if err != nil {
		s.logger.Warn("Generator returned unparseable itinerary", zap.Error(err))
		return models.Trip{}, err
	}

	if err := trip.ValidateItinerary(); err != nil {
		s.logger.Warn("Generator returned structurally invalid itinerary", zap.Error(err))
		return models.Trip{}, fmt.Errorf("%w: %v", models.ErrGeneration, err)
	}
	if err := validateRoundTrip(trip, req.DepartureLocation); err != nil {
		s.logger.Warn("Generator itinerary does not return home", zap.Error(err))
		return models.Trip{}, err
	}

	s.logger.Info("Trip generated",
		zap.String("destination", trip.Destination),
		zap.Int("days", len(trip.Itinerary)),
	)
	return trip, nil
}

// EditTrip asks the generator for a complete replacement itinerary for an
// existing trip. Structural validation of the replacement happens in the
// itinerary editor; here only parseability is enforced.
func (s *Service) EditTrip(ctx context.Context, trip models.Trip, instruction string) (models.Trip, error) {
	serialized, err := json.Marshal(trip)
	if err != nil {
		return models.Trip{}, fmt.Errorf("serializing current trip: %w", err)
	}

	start := time.Now()
	raw, err := s.gen.generate(ctx, editPrompt(string(serialized), trip.DepartureLocation, instruction))
	metrics.Get().GenerationDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return models.Trip{}, fmt.Errorf("%w: %v", models.ErrGeneration, err)
	}

	replacement, err := decodeGeneratedTrip(raw)
	if err != nil {
		s.logger.Warn("Generator returned unparseable edit", zap.Error(err))
		return models.Trip{}, err
	}

	s.logger.Info("Edit candidate generated", zap.String("trip_id", trip.ID.String()))
	return replacement, nil
}

// validateRoundTrip rejects fresh itineraries that do not travel back to
// the departure location on the last day. The generator is instructed to
// plan round trips; this is the enforcement at the core boundary.
func validateRoundTrip(trip models.Trip, departureLocation string) error {
	if strings.TrimSpace(departureLocation) == "" {
		return nil
	}

	lastDay := trip.Itinerary[len(trip.Itinerary)-1]
	needle := strings.ToLower(departureLocation)
	for _, a := range lastDay.Activities {
		if a.Type != models.ActivityFlight && a.Type != models.ActivityTransport {
			continue
		}
		haystack := strings.ToLower(a.Title + " " + a.Description + " " + a.Location)
		if strings.Contains(haystack, needle) {
			return nil
		}
	}
	return fmt.Errorf("%w: no return transport to %s on the final day", models.ErrGeneration, departureLocation)
}
