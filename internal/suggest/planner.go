package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goalkeeper/goals/internal/llm"
	"github.com/goalkeeper/goals/internal/metrics"
)

const promptTemplate = `You are an expert in productivity and goal setting. Break the user's goal down into a list of small, actionable steps. The goal is: %q.
Return the answer as a JSON object with a single key "steps" whose value is an array of strings. Each string must be one concise step. For example: {"steps": ["Step 1", "Step 2", "Step 3"]}`

// Planner suggests steps by prompting an LLM directly. It backs the
// /api/suggest-steps endpoint and is used in-process when no remote
// suggestion service is configured.
type Planner struct {
	gen     llm.Generator
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewPlanner returns a Planner over gen. log and m may be nil.
func NewPlanner(gen llm.Generator, log *slog.Logger, m *metrics.Metrics) *Planner {
	if log == nil {
		log = slog.Default()
	}
	return &Planner{gen: gen, log: log, metrics: m}
}

// SuggestSteps asks the model for steps towards goalTitle.
// A reply whose steps field is missing or not an array is zero suggestions.
// Model errors and replies that are not a JSON object fail with *Error.
func (p *Planner) SuggestSteps(ctx context.Context, goalTitle string) ([]string, error) {
	start := time.Now()
	steps, err := p.plan(ctx, goalTitle)
	p.metrics.ObserveSuggestion("planner", outcomeOf(steps, err), time.Since(start))
	return steps, err
}

func (p *Planner) plan(ctx context.Context, goalTitle string) ([]string, error) {
	out, err := p.gen.Generate(ctx, fmt.Sprintf(promptTemplate, strings.TrimSpace(goalTitle)))
	if err != nil {
		p.log.WarnContext(ctx, "llm generate failed", "error", err)
		return nil, failure("")
	}

	steps, _, ok := decodeResponse([]byte(stripFences(out)))
	if !ok {
		p.log.WarnContext(ctx, "llm reply is not a JSON object", "reply", truncate(out, 200))
		return nil, failure("")
	}
	if steps == nil {
		steps = []string{}
	}
	return steps, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// add even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the info string, e.g. "json"
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
