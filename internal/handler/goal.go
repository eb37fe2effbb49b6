package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/goalkeeper/goals/internal/domain"
	"github.com/goalkeeper/goals/internal/service"
)

// createGoalRequest is the body of POST /goals.
type createGoalRequest struct {
	Title string `json:"title" validate:"required"`
}

// goalResponse is one goal card: the stored goal, its progress, and its
// transient suggestion state. suggestionError is null when there is none.
type goalResponse struct {
	ID                   uuid.UUID     `json:"id"`
	Title                string        `json:"title"`
	Steps                []domain.Step `json:"steps"`
	Progress             float64       `json:"progress"`
	IsLoadingSuggestions bool          `json:"isLoadingSuggestions"`
	SuggestionError      *string       `json:"suggestionError"`
}

// ListGoals handles GET /goals. Goals are returned newest first.
func (s *Server) ListGoals(w http.ResponseWriter, r *http.Request) {
	views := s.goals.List(r.Context())

	out := make([]goalResponse, len(views))
	for i, v := range views {
		out[i] = goalToResponse(v)
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateGoal handles POST /goals.
func (s *Server) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var body createGoalRequest
	if status, err := decodeJSON(r, &body); err != nil {
		writeJSON(w, status, requestBody(err.Error()))
		return
	}

	created, err := s.goals.AddGoal(r.Context(), body.Title)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, goalToResponse(created))
}

// DeleteGoal handles DELETE /goals/{goalId}.
// Deleting a goal that does not exist still answers 204.
func (s *Server) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID, ok := bindUUID(w, r, "goalId")
	if !ok {
		return
	}

	if err := s.goals.DeleteGoal(r.Context(), goalID); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleStep handles POST /goals/{goalId}/steps/{stepId}/toggle.
// Unknown goal or step ids are a silent no-op and still answer 204.
func (s *Server) ToggleStep(w http.ResponseWriter, r *http.Request) {
	goalID, ok := bindUUID(w, r, "goalId")
	if !ok {
		return
	}
	stepID, ok := bindUUID(w, r, "stepId")
	if !ok {
		return
	}

	if err := s.goals.ToggleStep(r.Context(), goalID, stepID); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestSuggestions handles POST /goals/{goalId}/suggestions.
// A failed suggestion still answers 200; the message is on suggestionError.
func (s *Server) RequestSuggestions(w http.ResponseWriter, r *http.Request) {
	goalID, ok := bindUUID(w, r, "goalId")
	if !ok {
		return
	}

	view, err := s.goals.RequestSuggestions(r.Context(), goalID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, notFoundBody("goal not found"))
		case errors.Is(err, domain.ErrSuggestionInFlight):
			writeJSON(w, http.StatusConflict, conflictBody("suggestions are already being fetched for this goal"))
		default:
			s.internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, goalToResponse(view))
}

// --- helpers ----------------------------------------------------------------

// bindUUID binds a UUID path parameter the way oapi-codegen's generated
// wrappers do. On failure it writes a 400 response and returns ok=false.
func bindUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorDetail{
			Code:    "invalid_parameter",
			Message: "invalid format for parameter " + name,
		}})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, internalBody())
}

// goalToResponse converts a service.GoalView into its JSON shape.
func goalToResponse(v service.GoalView) goalResponse {
	resp := goalResponse{
		ID:                   v.ID,
		Title:                v.Title,
		Steps:                v.Steps,
		Progress:             v.Progress,
		IsLoadingSuggestions: v.IsLoadingSuggestions,
	}
	if resp.Steps == nil {
		resp.Steps = []domain.Step{}
	}
	if v.SuggestionError != "" {
		msg := v.SuggestionError
		resp.SuggestionError = &msg
	}
	return resp
}
