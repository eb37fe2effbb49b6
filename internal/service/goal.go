// Package service turns user actions into Goal Repository and suggester calls.
// It also owns the per-goal transient UI state (loading flag, last error)
// that the presentation layer shows next to each goal.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/goalkeeper/goals/internal/domain"
	"github.com/goalkeeper/goals/internal/repo"
)

// Messages stored as a goal's suggestion error when the failure carries none of its own.
const (
	unknownErrorMessage = "An unknown error occurred."
	saveErrorMessage    = "Could not save the suggested steps. Please try again."
)

// Suggester proposes step texts for a goal title.
// Failures must match domain.ErrSuggestionFailed and carry a user-facing message.
type Suggester interface {
	SuggestSteps(ctx context.Context, goalTitle string) ([]string, error)
}

// GoalView is a goal as the presentation layer sees it: the stored goal plus
// its derived progress and transient suggestion state.
type GoalView struct {
	domain.Goal
	Progress             float64
	IsLoadingSuggestions bool
	SuggestionError      string
}

type suggestionState struct {
	loading bool
	err     string
}

// GoalService implements the goal tracker's user actions.
type GoalService struct {
	goals     repo.GoalRepo
	suggester Suggester
	log       *slog.Logger

	mu    sync.Mutex
	state map[uuid.UUID]suggestionState
}

// NewGoalService constructs a GoalService. log may be nil.
func NewGoalService(goals repo.GoalRepo, suggester Suggester, log *slog.Logger) *GoalService {
	if log == nil {
		log = slog.Default()
	}
	return &GoalService{
		goals:     goals,
		suggester: suggester,
		log:       log,
		state:     make(map[uuid.UUID]suggestionState),
	}
}

// List returns every goal, newest first, with progress and suggestion state.
// Always returns a non-nil slice so callers can safely range over it.
func (s *GoalService) List(ctx context.Context) []GoalView {
	goals := s.goals.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, s.viewLocked(g))
	}
	return views
}

// AddGoal creates a new goal. Duplicate titles are allowed.
// Returns domain.ErrValidation for a blank title.
func (s *GoalService) AddGoal(ctx context.Context, title string) (GoalView, error) {
	g, err := s.goals.AddGoal(ctx, title)
	if err != nil {
		return GoalView{}, fmt.Errorf("service.GoalService.AddGoal: %w", err)
	}
	return s.view(g), nil
}

// DeleteGoal removes a goal and forgets its suggestion state.
// Deleting an unknown goal is not an error.
func (s *GoalService) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	if err := s.goals.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("service.GoalService.DeleteGoal: %w", err)
	}
	s.mu.Lock()
	delete(s.state, id)
	s.mu.Unlock()
	return nil
}

// ToggleStep flips one step. Unknown goal or step ids are not an error.
func (s *GoalService) ToggleStep(ctx context.Context, goalID, stepID uuid.UUID) error {
	if err := s.goals.ToggleStep(ctx, goalID, stepID); err != nil {
		return fmt.Errorf("service.GoalService.ToggleStep: %w", err)
	}
	return nil
}

// RequestSuggestions fetches suggested steps for a goal and appends them.
//
// A suggestion failure is not returned: its message is recorded on the goal
// and shows up in the returned view (and in later List calls) until the next
// request. Returns domain.ErrNotFound for an unknown goal and
// domain.ErrSuggestionInFlight when a request for this goal is still running.
func (s *GoalService) RequestSuggestions(ctx context.Context, goalID uuid.UUID) (GoalView, error) {
	g, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return GoalView{}, fmt.Errorf("service.GoalService.RequestSuggestions: %w", err)
	}

	s.mu.Lock()
	if s.state[goalID].loading {
		s.mu.Unlock()
		return GoalView{}, fmt.Errorf("service.GoalService.RequestSuggestions: %w", domain.ErrSuggestionInFlight)
	}
	s.state[goalID] = suggestionState{loading: true}
	s.mu.Unlock()

	texts, err := s.suggester.SuggestSteps(ctx, g.Title)
	if err != nil {
		s.finish(ctx, goalID, failureMessage(err))
		return s.current(ctx, goalID)
	}

	updated, err := s.goals.AppendSuggestedSteps(ctx, goalID, texts)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Deleted while the request was in flight.
		s.forget(goalID)
		return GoalView{}, fmt.Errorf("service.GoalService.RequestSuggestions: %w", err)
	case err != nil:
		s.log.ErrorContext(ctx, "append suggested steps failed", "goal_id", goalID, "error", err)
		s.finish(ctx, goalID, saveErrorMessage)
		return s.current(ctx, goalID)
	}

	s.finish(ctx, goalID, "")
	return s.view(updated), nil
}

// finish clears the loading flag and records errMsg (empty on success).
// State for a goal deleted mid-request is dropped instead.
func (s *GoalService) finish(ctx context.Context, goalID uuid.UUID, errMsg string) {
	if _, err := s.goals.GetByID(ctx, goalID); err != nil {
		s.forget(goalID)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if errMsg == "" {
		delete(s.state, goalID)
		return
	}
	s.state[goalID] = suggestionState{err: errMsg}
}

func (s *GoalService) forget(goalID uuid.UUID) {
	s.mu.Lock()
	delete(s.state, goalID)
	s.mu.Unlock()
}

// current returns the latest view of goalID.
func (s *GoalService) current(ctx context.Context, goalID uuid.UUID) (GoalView, error) {
	latest, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return GoalView{}, fmt.Errorf("service.GoalService.RequestSuggestions: %w", err)
	}
	return s.view(latest), nil
}

func (s *GoalService) view(g domain.Goal) GoalView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(g)
}

// viewLocked builds a GoalView. Callers must hold s.mu.
func (s *GoalService) viewLocked(g domain.Goal) GoalView {
	st := s.state[g.ID]
	return GoalView{
		Goal:                 g,
		Progress:             g.Progress(),
		IsLoadingSuggestions: st.loading,
		SuggestionError:      st.err,
	}
}

// failureMessage extracts the user-facing message from a suggester failure.
func failureMessage(err error) string {
	if errors.Is(err, domain.ErrSuggestionFailed) && err.Error() != "" {
		return err.Error()
	}
	return unknownErrorMessage
}
