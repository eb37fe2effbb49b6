// Package suggest produces AI step suggestions for a goal title.
//
// Client is the outbound side: one HTTP round trip to a suggestion service.
// Planner is the service side: it prompts an LLM directly. Both satisfy the
// same SuggestSteps contract and fail only with *Error.
package suggest

import "github.com/goalkeeper/goals/internal/domain"

// FallbackMessage is shown to the user when no more specific message is available.
const FallbackMessage = "Could not get suggestions from the AI. Please try again."

// Error is the single failure a suggestion round trip can produce.
// Error() is the user-facing message; the underlying cause is logged, not carried.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Unwrap lets errors.Is(err, domain.ErrSuggestionFailed) match.
func (e *Error) Unwrap() error { return domain.ErrSuggestionFailed }

// failure returns an *Error with msg, or FallbackMessage when msg is blank.
func failure(msg string) *Error {
	if domain.IsBlank(msg) {
		msg = FallbackMessage
	}
	return &Error{Message: msg}
}
