package handler

import (
	"net/http"

	"github.com/goalkeeper/goals/internal/domain"
	"github.com/goalkeeper/goals/internal/suggest"
)

// SuggestSteps handles POST /api/suggest-steps, the suggestion service
// endpoint a remote suggest.Client talks to. Errors use the flat
// {"error": "..."} body that client understands.
func (s *Server) SuggestSteps(w http.ResponseWriter, r *http.Request) {
	var body suggest.Request
	if status, err := decodeJSON(r, &body); err != nil {
		writeJSON(w, status, suggest.Response{Error: err.Error()})
		return
	}
	if domain.IsBlank(body.GoalTitle) {
		writeJSON(w, http.StatusUnprocessableEntity, suggest.Response{Error: "goalTitle is required"})
		return
	}

	steps, err := s.planner.SuggestSteps(r.Context(), body.GoalTitle)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, suggest.Response{Error: err.Error()})
		return
	}
	if steps == nil {
		steps = []string{}
	}
	writeJSON(w, http.StatusOK, stepsResponse{Steps: steps})
}

// stepsResponse always serializes steps, even when empty.
type stepsResponse struct {
	Steps []string `json:"steps"`
}
