package trips

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/voyager/internal/app/domain/billing"
	"github.com/FACorreiaa/voyager/internal/app/models"
	"github.com/FACorreiaa/voyager/internal/pkg/config"
)

// stubDB accepts every write. Store persistence against real SQL is covered
// in store_test.go.
type stubDB struct{}

func (stubDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (stubDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("unexpected query")
}

type fakeGenerator struct {
	generated models.Trip
	edited    models.Trip
	err       error

	generateCalls int
	editCalls     int
	lastRequest   models.TripRequest
	lastEditTrip  models.Trip
	lastEditText  string
}

func (f *fakeGenerator) GenerateTrip(_ context.Context, req models.TripRequest) (models.Trip, error) {
	f.generateCalls++
	f.lastRequest = req
	if f.err != nil {
		return models.Trip{}, f.err
	}
	return f.generated, nil
}

func (f *fakeGenerator) EditTrip(_ context.Context, trip models.Trip, instruction string) (models.Trip, error) {
	f.editCalls++
	f.lastEditTrip = trip
	f.lastEditText = instruction
	if f.err != nil {
		return models.Trip{}, f.err
	}
	return f.edited, nil
}

func plannedTrip(name string) models.Trip {
	return models.Trip{
		Name:              name,
		DepartureLocation: "Paris",
		Destination:       "Rome",
		StartDate:         "2025-06-01",
		EndDate:           "2025-06-02",
		Itinerary: []models.DailyPlan{
			{Day: 1, Date: "2025-06-01", Activities: []models.Activity{
				{Time: "09:00", Title: "Flight to Rome", Type: models.ActivityFlight},
			}},
			{Day: 2, Date: "2025-06-02", Activities: []models.Activity{
				{Time: "18:00", Title: "Train back to Paris", Type: models.ActivityTransport},
			}},
		},
	}
}

func validRequest() models.TripRequest {
	return models.TripRequest{
		DepartureLocation: "Paris",
		Destinations:      []string{"Rome"},
		StartDate:         "2025-06-01",
		EndDate:           "2025-06-02",
		TransportType:     "Plane",
	}
}

type serviceFixture struct {
	service *Service
	store   *Store
	gen     *fakeGenerator
}

func newFixture(t *testing.T, trialUsed bool, trips ...models.Trip) serviceFixture {
	t.Helper()

	store := &Store{db: stubDB{}, logger: zap.NewNop(), trips: trips}
	pricing := config.PricingConfig{
		GenerationCents:  299,
		EditCents:        99,
		Currency:         "usd",
		FreeEditsPerTrip: 2,
	}
	gate := billing.NewGate(
		billing.NewMemoryTrialState(trialUsed),
		billing.NewOfflineProvider(zap.NewNop()),
		pricing,
		zap.NewNop(),
	)
	gen := &fakeGenerator{generated: plannedTrip("Rome getaway"), edited: plannedTrip("Rome getaway, revised")}
	return serviceFixture{
		service: NewService(store, gate, gen, zap.NewNop()),
		store:   store,
		gen:     gen,
	}
}

func TestService_Generate(t *testing.T) {
	t.Run("first generation is free and commits the trip", func(t *testing.T) {
		fx := newFixture(t, false)

		decision, err := fx.service.Generate(context.Background(), validRequest())
		require.NoError(t, err)

		assert.Equal(t, billing.StatusAuthorized, decision.Status)
		require.NotNil(t, decision.Trip)
		assert.NotEqual(t, uuid.Nil, decision.Trip.ID)
		assert.Equal(t, defaultCoverImage, decision.Trip.ImageURL)
		assert.NotNil(t, decision.Trip.Sources)
		assert.Zero(t, decision.Trip.EditCount)

		stored, err := fx.store.Get(decision.Trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rome getaway", stored.Name)
	})

	t.Run("invalid request never reaches the planner", func(t *testing.T) {
		fx := newFixture(t, false)

		req := validRequest()
		req.DepartureLocation = ""
		_, err := fx.service.Generate(context.Background(), req)

		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Zero(t, fx.gen.generateCalls)
	})

	t.Run("used trial defers generation behind a payment", func(t *testing.T) {
		fx := newFixture(t, true)

		decision, err := fx.service.Generate(context.Background(), validRequest())
		require.NoError(t, err)

		assert.Equal(t, billing.StatusAwaitingPayment, decision.Status)
		assert.Nil(t, decision.Trip)
		assert.EqualValues(t, 299, decision.AmountCents)
		assert.Zero(t, fx.gen.generateCalls, "nothing runs until the payment clears")
		assert.Empty(t, fx.store.List())
	})

	t.Run("confirming a deferred generation commits it", func(t *testing.T) {
		fx := newFixture(t, true)

		decision, err := fx.service.Generate(context.Background(), validRequest())
		require.NoError(t, err)
		require.Equal(t, billing.StatusAwaitingPayment, decision.Status)

		trip, err := fx.service.ConfirmRequest(context.Background(), decision.RequestID)
		require.NoError(t, err)
		assert.Equal(t, "Rome getaway", trip.Name)

		stored, err := fx.store.Get(trip.ID)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, stored.ID)
	})

	t.Run("planner failure surfaces and commits nothing", func(t *testing.T) {
		fx := newFixture(t, false)
		fx.gen.err = models.ErrGeneration

		_, err := fx.service.Generate(context.Background(), validRequest())
		assert.ErrorIs(t, err, models.ErrGeneration)
		assert.Empty(t, fx.store.List())
	})
}

func TestService_Edit(t *testing.T) {
	existing := plannedTrip("Rome getaway")
	existing.ID = uuid.New()

	t.Run("free edit replaces the trip and bumps the edit count", func(t *testing.T) {
		fx := newFixture(t, true, existing)

		decision, err := fx.service.Edit(context.Background(), existing.ID, "add a museum on day 2")
		require.NoError(t, err)

		assert.Equal(t, billing.StatusAuthorized, decision.Status)
		require.NotNil(t, decision.Trip)
		assert.Equal(t, existing.ID, decision.Trip.ID, "edits keep the trip identity")
		assert.Equal(t, 1, decision.Trip.EditCount)
		assert.Equal(t, "Rome getaway, revised", decision.Trip.Name)
		assert.Equal(t, existing, fx.gen.lastEditTrip)
		assert.Equal(t, "add a museum on day 2", fx.gen.lastEditText)
	})

	t.Run("blank instruction is rejected", func(t *testing.T) {
		fx := newFixture(t, true, existing)

		_, err := fx.service.Edit(context.Background(), existing.ID, "   ")
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Zero(t, fx.gen.editCalls)
	})

	t.Run("unknown trip", func(t *testing.T) {
		fx := newFixture(t, true)

		_, err := fx.service.Edit(context.Background(), uuid.New(), "anything")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("edits past the allowance are deferred", func(t *testing.T) {
		spent := existing
		spent.EditCount = 2
		fx := newFixture(t, true, spent)

		decision, err := fx.service.Edit(context.Background(), spent.ID, "one more change")
		require.NoError(t, err)

		assert.Equal(t, billing.StatusAwaitingPayment, decision.Status)
		assert.EqualValues(t, 99, decision.AmountCents)
		assert.Zero(t, fx.gen.editCalls)
	})
}

func TestService_InsertActivity(t *testing.T) {
	existing := plannedTrip("Rome getaway")
	existing.ID = uuid.New()

	t.Run("splices into the requested day in time order", func(t *testing.T) {
		fx := newFixture(t, true, existing)

		updated, err := fx.service.InsertActivity(context.Background(), existing.ID, 2, models.Activity{
			Time:  "12:00",
			Title: "Lunch near Termini",
		})
		require.NoError(t, err)

		times := []string{}
		for _, a := range updated.Itinerary[1].Activities {
			times = append(times, a.Time)
		}
		assert.Equal(t, []string{"12:00", "18:00"}, times)
		assert.Equal(t, existing.EditCount, updated.EditCount, "manual inserts are not AI edits")

		stored, err := fx.store.Get(existing.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Itinerary[1].Activities, 2)
	})

	t.Run("day out of range", func(t *testing.T) {
		fx := newFixture(t, true, existing)

		_, err := fx.service.InsertActivity(context.Background(), existing.ID, 5, models.Activity{
			Time:  "12:00",
			Title: "Lunch",
		})
		assert.ErrorIs(t, err, models.ErrRange)
	})

	t.Run("unknown trip", func(t *testing.T) {
		fx := newFixture(t, true)

		_, err := fx.service.InsertActivity(context.Background(), uuid.New(), 1, models.Activity{
			Time:  "12:00",
			Title: "Lunch",
		})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestService_BookingLink(t *testing.T) {
	existing := plannedTrip("Rome getaway")
	existing.ID = uuid.New()
	existing.Itinerary[0].Activities[0].BookingURL = "https://www.airline.example/booking/ab12cd34"

	fx := newFixture(t, true, existing)

	t.Run("passes a plausible stored link through", func(t *testing.T) {
		link, ok, err := fx.service.BookingLink(existing.ID, 1, 0)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "https://www.airline.example/booking/ab12cd34", link)
	})

	t.Run("falls back to a search template", func(t *testing.T) {
		link, ok, err := fx.service.BookingLink(existing.ID, 2, 0)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, link, "thetrainline.com")
	})

	t.Run("indices out of range", func(t *testing.T) {
		_, _, err := fx.service.BookingLink(existing.ID, 3, 0)
		assert.ErrorIs(t, err, models.ErrRange)

		_, _, err = fx.service.BookingLink(existing.ID, 1, 4)
		assert.ErrorIs(t, err, models.ErrRange)
	})

	t.Run("unknown trip", func(t *testing.T) {
		_, _, err := fx.service.BookingLink(uuid.New(), 1, 0)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	existing := plannedTrip("Rome getaway")
	existing.ID = uuid.New()
	fx := newFixture(t, true, existing)

	require.NoError(t, fx.service.Delete(context.Background(), existing.ID))
	assert.Empty(t, fx.service.List())

	err := fx.service.Delete(context.Background(), existing.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
