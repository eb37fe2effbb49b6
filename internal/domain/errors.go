package domain

import "errors"

// ErrNotFound is returned when the requested goal (or step) does not exist.
// Delete and toggle treat it as a silent no-op; handlers map the remaining
// cases to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input is blank or otherwise unusable
// (e.g. a whitespace-only goal title). Nothing is mutated or persisted.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrSuggestionFailed matches every failure of a suggestion round trip.
// The error carrying it exposes only a user-facing message.
var ErrSuggestionFailed = errors.New("suggestion failed")

// ErrSuggestionInFlight is returned when suggestions are requested for a goal
// that already has a request outstanding. Handlers map it to HTTP 409.
var ErrSuggestionInFlight = errors.New("suggestion request already in flight")
