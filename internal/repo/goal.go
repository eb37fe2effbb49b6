// Package repo owns the authoritative in-memory goal list.
// Every mutation is written through to the persistent store before it becomes
// visible, so the in-memory and durable views never diverge.
package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goalkeeper/goals/internal/domain"
)

// Snapshotter is the persistence contract the repository writes through to.
// *store.GoalStore satisfies it.
type Snapshotter interface {
	Load(ctx context.Context) []domain.Goal
	Save(ctx context.Context, goals []domain.Goal) error
}

// GoalRepo defines the only sanctioned operations on the goal list.
// The service layer depends on this interface, not the concrete implementation,
// which allows the service to be unit-tested with a mock.
type GoalRepo interface {
	// List returns every goal, newest first.
	List(ctx context.Context) []domain.Goal

	// GetByID returns one goal. Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Goal, error)

	// AddGoal creates a goal with the trimmed title and prepends it.
	// Returns domain.ErrValidation, without mutating anything, for a blank title.
	AddGoal(ctx context.Context, title string) (domain.Goal, error)

	// DeleteGoal removes a goal and all its steps. Unknown ids are a no-op.
	DeleteGoal(ctx context.Context, id uuid.UUID) error

	// ToggleStep flips one step's completed flag. Unknown ids are a no-op.
	ToggleStep(ctx context.Context, goalID, stepID uuid.UUID) error

	// AppendSuggestedSteps appends one new uncompleted step per non-blank text,
	// in order, and returns the updated goal.
	// Returns domain.ErrNotFound if the goal does not exist.
	AppendSuggestedSteps(ctx context.Context, goalID uuid.UUID, texts []string) (domain.Goal, error)
}

// goalRepo is the write-through, mutex-guarded implementation of GoalRepo.
type goalRepo struct {
	mu    sync.Mutex
	store Snapshotter
	goals []domain.Goal
}

// NewGoalRepo loads the current snapshot from s and returns a repository over it.
func NewGoalRepo(ctx context.Context, s Snapshotter) GoalRepo {
	goals := s.Load(ctx)
	if goals == nil {
		goals = []domain.Goal{}
	}
	return &goalRepo{store: s, goals: goals}
}

func (r *goalRepo) List(_ context.Context) []domain.Goal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneGoals(r.goals)
}

func (r *goalRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Goal{}, fmt.Errorf("repo.GoalRepo.GetByID: %w", domain.ErrNotFound)
	}
	return r.goals[i].Clone(), nil
}

func (r *goalRepo) AddGoal(ctx context.Context, title string) (domain.Goal, error) {
	if domain.IsBlank(title) {
		return domain.Goal{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g := domain.NewGoal(title)
	next := make([]domain.Goal, 0, len(r.goals)+1)
	next = append(next, g)
	next = append(next, r.goals...)

	if err := r.commit(ctx, next); err != nil {
		return domain.Goal{}, fmt.Errorf("repo.GoalRepo.AddGoal: %w", err)
	}
	return g.Clone(), nil
}

func (r *goalRepo) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]domain.Goal, 0, len(r.goals))
	for _, g := range r.goals {
		if g.ID != id {
			next = append(next, g)
		}
	}

	if err := r.commit(ctx, next); err != nil {
		return fmt.Errorf("repo.GoalRepo.DeleteGoal: %w", err)
	}
	return nil
}

func (r *goalRepo) ToggleStep(ctx context.Context, goalID, stepID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]domain.Goal, len(r.goals))
	copy(next, r.goals)
	if i := r.indexOf(goalID); i >= 0 {
		g := next[i].Clone()
		for j := range g.Steps {
			if g.Steps[j].ID == stepID {
				g.Steps[j].Completed = !g.Steps[j].Completed
				break
			}
		}
		next[i] = g
	}

	if err := r.commit(ctx, next); err != nil {
		return fmt.Errorf("repo.GoalRepo.ToggleStep: %w", err)
	}
	return nil
}

func (r *goalRepo) AppendSuggestedSteps(ctx context.Context, goalID uuid.UUID, texts []string) (domain.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(goalID)
	if i < 0 {
		return domain.Goal{}, fmt.Errorf("repo.GoalRepo.AppendSuggestedSteps: %w", domain.ErrNotFound)
	}

	g := r.goals[i].Clone()
	added := 0
	for _, text := range texts {
		if domain.IsBlank(text) {
			continue
		}
		g.Steps = append(g.Steps, domain.NewStep(text))
		added++
	}
	if added == 0 {
		return g, nil
	}

	next := make([]domain.Goal, len(r.goals))
	copy(next, r.goals)
	next[i] = g

	if err := r.commit(ctx, next); err != nil {
		return domain.Goal{}, fmt.Errorf("repo.GoalRepo.AppendSuggestedSteps: %w", err)
	}
	return g.Clone(), nil
}

// commit persists next and, only on success, makes it the current list.
// Callers must hold r.mu.
func (r *goalRepo) commit(ctx context.Context, next []domain.Goal) error {
	if err := r.store.Save(ctx, next); err != nil {
		return err
	}
	r.goals = next
	return nil
}

// indexOf returns the position of the goal with id, or -1. Callers must hold r.mu.
func (r *goalRepo) indexOf(id uuid.UUID) int {
	for i, g := range r.goals {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func cloneGoals(goals []domain.Goal) []domain.Goal {
	out := make([]domain.Goal, len(goals))
	for i, g := range goals {
		out[i] = g.Clone()
	}
	return out
}
