// Package handler implements the HTTP API for the goal tracker.
// All handlers are methods on Server. Methods are split into files by
// resource (health.go, goal.go, suggest.go) but share the same Server struct.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/goalkeeper/goals/api"
	"github.com/goalkeeper/goals/internal/service"
)

// GoalServicer defines the business operations the goal handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching storage or the AI service.
type GoalServicer interface {
	List(ctx context.Context) []service.GoalView
	AddGoal(ctx context.Context, title string) (service.GoalView, error)
	DeleteGoal(ctx context.Context, id uuid.UUID) error
	ToggleStep(ctx context.Context, goalID, stepID uuid.UUID) error
	RequestSuggestions(ctx context.Context, goalID uuid.UUID) (service.GoalView, error)
}

// StepSuggester backs the /api/suggest-steps endpoint.
// *suggest.Planner satisfies it.
type StepSuggester interface {
	SuggestSteps(ctx context.Context, goalTitle string) ([]string, error)
}

// Server holds every dependency the handlers need.
type Server struct {
	goals   GoalServicer
	planner StepSuggester
	log     *slog.Logger
}

// validate reports request field errors by their JSON names.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// NewServer constructs the Server. planner may be nil, in which case the
// /api/suggest-steps endpoint is not mounted. log may be nil.
func NewServer(goals GoalServicer, planner StepSuggester, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{goals: goals, planner: planner, log: log}
}

// Routes returns the chi router serving every API endpoint.
// Cross-cutting middleware (request IDs, logging, CORS) is added by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/goals", func(r chi.Router) {
		r.Get("/", s.ListGoals)
		r.Post("/", s.CreateGoal)
		r.Delete("/{goalId}", s.DeleteGoal)
		r.Post("/{goalId}/steps/{stepId}/toggle", s.ToggleStep)
		r.Post("/{goalId}/suggestions", s.RequestSuggestions)
	})

	if s.planner != nil {
		r.Post("/api/suggest-steps", s.SuggestSteps)
	}
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(api.OpenAPI)
}
