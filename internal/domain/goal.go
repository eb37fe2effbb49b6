// Package domain contains the core data types for the goal tracker.
// It is imported by every other internal package (store, repo, service, handler).
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Step is one actionable, completable item belonging to a Goal.
// Steps are only ever created in batches from AI suggestions.
type Step struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	Text      string    `json:"text" validate:"required"`
	Completed bool      `json:"completed"`
}

// Goal is a user-defined ambition with an ordered checklist of steps.
// The title is set once at creation; steps keep insertion order.
type Goal struct {
	ID    uuid.UUID `json:"id" validate:"required"`
	Title string    `json:"title" validate:"required"`
	Steps []Step    `json:"steps" validate:"required,dive"`
}

// NewGoal returns a goal with a fresh random ID, the trimmed title, and no steps.
// Callers are expected to have rejected blank titles already.
func NewGoal(title string) Goal {
	return Goal{
		ID:    uuid.New(),
		Title: strings.TrimSpace(title),
		Steps: []Step{},
	}
}

// NewStep returns an uncompleted step with a fresh random ID.
func NewStep(text string) Step {
	return Step{ID: uuid.New(), Text: strings.TrimSpace(text)}
}

// Progress returns the percentage of completed steps, or 0 for a goal with no steps.
func (g Goal) Progress() float64 {
	if len(g.Steps) == 0 {
		return 0
	}
	done := 0
	for _, s := range g.Steps {
		if s.Completed {
			done++
		}
	}
	return float64(done) / float64(len(g.Steps)) * 100
}

// Clone returns a deep copy so callers can never alias the repository's steps.
func (g Goal) Clone() Goal {
	steps := make([]Step, len(g.Steps))
	copy(steps, g.Steps)
	g.Steps = steps
	return g
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
