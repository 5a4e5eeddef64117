package trips

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/FACorreiaa/voyager/internal/app/models"
	"github.com/FACorreiaa/voyager/internal/app/observability/metrics"
)

const collectionKey = "trips"

// DB is the subset of pgxpool.Pool the store needs. pgxmock implements it
// for tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store owns the trip collection. Persistence is snapshot-based: the whole
// collection is one jsonb value, loaded once at startup and written back in
// a single statement on every mutation. Readers therefore see either the
// old or the fully new collection, never a hybrid.
type Store struct {
	db     DB
	logger *zap.Logger

	mu    sync.RWMutex
	trips []models.Trip
}

// LoadStore reads the persisted trip collection into memory.
func LoadStore(ctx context.Context, db DB, logger *zap.Logger) (*Store, error) {
	query, args, err := psql.Select("value").From("app_state").Where(sq.Eq{"key": collectionKey}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building trips query: %w", err)
	}

	var raw []byte
	if err := db.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("loading trips: %w", err)
	}

	var trips []models.Trip
	if err := json.Unmarshal(raw, &trips); err != nil {
		return nil, fmt.Errorf("decoding trips: %w", err)
	}

	logger.Info("Trip collection loaded", zap.Int("count", len(trips)))
	return &Store{
		db:     db,
		logger: logger,
		trips:  trips,
	}, nil
}

// List returns a copy of the collection, newest first.
func (s *Store) List() []models.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Trip, len(s.trips))
	copy(out, s.trips)
	return out
}

// Get returns the trip with the given id.
func (s *Store) Get(id uuid.UUID) (models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trip, found := lo.Find(s.trips, func(t models.Trip) bool { return t.ID == id })
	if !found {
		return models.Trip{}, fmt.Errorf("%w: trip %s", models.ErrNotFound, id)
	}
	return trip, nil
}

// Upsert replaces the trip with the same id, or prepends a new one. The
// whole collection is persisted before the in-memory copy changes.
func (s *Store) Upsert(ctx context.Context, trip models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Trip, len(s.trips))
	copy(next, s.trips)

	if _, idx, found := lo.FindIndexOf(next, func(t models.Trip) bool { return t.ID == trip.ID }); found {
		next[idx] = trip
	} else {
		next = append([]models.Trip{trip}, next...)
	}

	if err := s.persist(ctx, next); err != nil {
		return err
	}

	s.trips = next
	return nil
}

// Remove deletes the trip with the given id.
func (s *Store) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := lo.Reject(s.trips, func(t models.Trip, _ int) bool { return t.ID == id })
	if len(next) == len(s.trips) {
		return fmt.Errorf("%w: trip %s", models.ErrNotFound, id)
	}

	if err := s.persist(ctx, next); err != nil {
		return err
	}

	s.trips = next
	return nil
}

func (s *Store) persist(ctx context.Context, trips []models.Trip) error {
	raw, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("encoding trips: %w", err)
	}

	query, args, err := psql.Update("app_state").
		Set("value", raw).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"key": collectionKey}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building trips update: %w", err)
	}

	start := time.Now()
	_, err = s.db.Exec(ctx, query, args...)
	metrics.Get().StoreWriteDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("persisting trips: %w", err)
	}

	s.logger.Debug("Trip collection persisted", zap.Int("count", len(trips)))
	return nil
}
