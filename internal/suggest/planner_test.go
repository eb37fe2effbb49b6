package suggest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalkeeper/goals/internal/llm"
	"github.com/goalkeeper/goals/internal/suggest"
)

// fakeGenerator is a test double for llm.Generator.
type fakeGenerator struct {
	generate func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.generate(ctx, prompt)
}

var _ llm.Generator = (*fakeGenerator)(nil)

func replying(out string) *fakeGenerator {
	return &fakeGenerator{generate: func(context.Context, string) (string, error) { return out, nil }}
}

func TestPlanner_SuggestSteps_PromptMentionsGoal(t *testing.T) {
	var prompt string
	gen := &fakeGenerator{generate: func(_ context.Context, p string) (string, error) {
		prompt = p
		return `{"steps":["a"]}`, nil
	}}

	_, err := suggest.NewPlanner(gen, nil, nil).SuggestSteps(context.Background(), "  Learn piano ")

	require.NoError(t, err)
	assert.Contains(t, prompt, `"Learn piano"`)
	assert.Contains(t, prompt, `"steps"`)
}

func TestPlanner_SuggestSteps_Replies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"plain json", `{"steps":["Find a teacher","Buy a keyboard"]}`, []string{"Find a teacher", "Buy a keyboard"}},
		{"fenced json", "```json\n{\"steps\":[\"a\",\"b\"]}\n```", []string{"a", "b"}},
		{"fence without info string", "```{\"steps\":[\"a\"]}```", []string{"a"}},
		{"steps not an array", `{"steps":{"first":"a"}}`, []string{}},
		{"no steps key", `{"plan":["a"]}`, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			steps, err := suggest.NewPlanner(replying(tc.reply), nil, nil).SuggestSteps(context.Background(), "x")

			require.NoError(t, err)
			assert.Equal(t, tc.want, steps)
		})
	}
}

func TestPlanner_SuggestSteps_NotJSON(t *testing.T) {
	_, err := suggest.NewPlanner(replying("Sure! Here are some steps: ..."), nil, nil).
		SuggestSteps(context.Background(), "x")

	requireSuggestionError(t, err, suggest.FallbackMessage)
}

func TestPlanner_SuggestSteps_GeneratorError(t *testing.T) {
	gen := &fakeGenerator{generate: func(context.Context, string) (string, error) {
		return "", errors.New("401 invalid api key")
	}}

	_, err := suggest.NewPlanner(gen, nil, nil).SuggestSteps(context.Background(), "x")

	// The cause must not leak into the user-facing message.
	requireSuggestionError(t, err, suggest.FallbackMessage)
	assert.NotContains(t, err.Error(), "api key")
}
