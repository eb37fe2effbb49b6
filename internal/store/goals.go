package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/goalkeeper/goals/internal/domain"
	"github.com/goalkeeper/goals/internal/metrics"
)

// snapshot is the validated shape of a stored goal list.
// Unknown JSON fields are ignored; missing required ones make the snapshot corrupt.
type snapshot struct {
	Goals []domain.Goal `validate:"dive"`
}

var snapshotValidate = validator.New(validator.WithRequiredStructEnabled())

// GoalStore persists the full goal list as one JSON value under GoalsKey.
type GoalStore struct {
	kv      KV
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewGoalStore constructs a GoalStore over kv. m may be nil.
func NewGoalStore(kv KV, log *slog.Logger, m *metrics.Metrics) *GoalStore {
	if log == nil {
		log = slog.Default()
	}
	return &GoalStore{kv: kv, log: log, metrics: m}
}

// Load returns the stored goal list, or an empty list when nothing usable is stored.
// A corrupt snapshot or a backend read error is logged and treated as absent;
// it is never fatal. The returned slice is never nil.
func (s *GoalStore) Load(ctx context.Context) []domain.Goal {
	raw, found, err := s.kv.Get(ctx, GoalsKey)
	if err != nil {
		s.log.WarnContext(ctx, "goal store read failed, starting empty", "key", GoalsKey, "error", err)
		return []domain.Goal{}
	}
	if !found {
		return []domain.Goal{}
	}

	goals, err := decodeSnapshot(raw)
	if err != nil {
		s.log.WarnContext(ctx, "goal store snapshot corrupted, starting empty", "key", GoalsKey, "error", err)
		return []domain.Goal{}
	}
	return goals
}

// Save serializes goals and overwrites the stored snapshot.
func (s *GoalStore) Save(ctx context.Context, goals []domain.Goal) error {
	if goals == nil {
		goals = []domain.Goal{}
	}
	raw, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("store.GoalStore.Save: encode: %w", err)
	}
	err = s.kv.Put(ctx, GoalsKey, raw)
	s.metrics.ObserveStoreWrite(err)
	if err != nil {
		return fmt.Errorf("store.GoalStore.Save: %w", err)
	}
	return nil
}

// decodeSnapshot parses and validates a stored goal list.
func decodeSnapshot(raw []byte) ([]domain.Goal, error) {
	var goals []domain.Goal
	if err := json.Unmarshal(raw, &goals); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := snapshotValidate.Struct(snapshot{Goals: goals}); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	goalIDs := make(map[uuid.UUID]struct{}, len(goals))
	for _, g := range goals {
		if _, dup := goalIDs[g.ID]; dup {
			return nil, fmt.Errorf("duplicate goal id %s", g.ID)
		}
		goalIDs[g.ID] = struct{}{}

		stepIDs := make(map[uuid.UUID]struct{}, len(g.Steps))
		for _, st := range g.Steps {
			if _, dup := stepIDs[st.ID]; dup {
				return nil, fmt.Errorf("duplicate step id %s in goal %s", st.ID, g.ID)
			}
			stepIDs[st.ID] = struct{}{}
		}
	}
	if goals == nil {
		goals = []domain.Goal{}
	}
	return goals, nil
}
