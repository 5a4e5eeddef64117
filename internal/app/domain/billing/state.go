package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const stateKey = "billing"

// TrialState owns the global free-trial flag. Once the flag is set it is
// never reset.
type TrialState interface {
	FreeTrialUsed() bool
	MarkFreeTrialUsed(ctx context.Context) error
}

// DB is the subset of pgxpool.Pool the state store needs. pgxmock
// implements it for tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type trialPayload struct {
	FreeTrialUsed bool `json:"free_trial_used"`
}

// PGTrialState persists the flag as the "billing" snapshot in app_state.
// The value is loaded once at startup and written back on every change.
type PGTrialState struct {
	db     DB
	logger *zap.Logger

	mu   sync.RWMutex
	used bool
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// LoadTrialState reads the persisted billing snapshot into memory.
func LoadTrialState(ctx context.Context, db DB, logger *zap.Logger) (*PGTrialState, error) {
	query, args, err := psql.Select("value").From("app_state").Where(sq.Eq{"key": stateKey}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building billing state query: %w", err)
	}

	var raw []byte
	if err := db.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		return nil, fmt.Errorf("loading billing state: %w", err)
	}

	var payload trialPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding billing state: %w", err)
	}

	logger.Info("Billing state loaded", zap.Bool("free_trial_used", payload.FreeTrialUsed))
	return &PGTrialState{
		db:     db,
		logger: logger,
		used:   payload.FreeTrialUsed,
	}, nil
}

func (s *PGTrialState) FreeTrialUsed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

// MarkFreeTrialUsed sets the flag permanently and writes the snapshot back.
func (s *PGTrialState) MarkFreeTrialUsed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.used {
		return nil
	}

	raw, err := json.Marshal(trialPayload{FreeTrialUsed: true})
	if err != nil {
		return fmt.Errorf("encoding billing state: %w", err)
	}

	query, args, err := psql.Update("app_state").
		Set("value", raw).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"key": stateKey}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building billing state update: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("persisting billing state: %w", err)
	}

	s.used = true
	s.logger.Info("Free trial marked as used")
	return nil
}

// MemoryTrialState keeps the flag in memory only. Used by tests that want a
// fresh monetization state per case.
type MemoryTrialState struct {
	mu   sync.RWMutex
	used bool
}

func NewMemoryTrialState(used bool) *MemoryTrialState {
	return &MemoryTrialState{used: used}
}

func (s *MemoryTrialState) FreeTrialUsed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

func (s *MemoryTrialState) MarkFreeTrialUsed(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used = true
	return nil
}
