package suggest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalkeeper/goals/internal/domain"
	"github.com/goalkeeper/goals/internal/suggest"
)

// newService starts a fake suggestion service that replies with status and body,
// and records the goal title of the last request.
func newService(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req suggest.Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotTitle = req.GoalTitle
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &gotTitle
}

// requireSuggestionError asserts err is the uniform failure with message msg.
func requireSuggestionError(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSuggestionFailed)
	var serr *suggest.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, msg, serr.Message)
	assert.Equal(t, msg, err.Error())
}

func TestClient_SuggestSteps_Success(t *testing.T) {
	srv, gotTitle := newService(t, http.StatusOK, `{"steps":["Find a teacher","Buy a keyboard"]}`)
	c := suggest.NewClient(srv.URL)

	steps, err := c.SuggestSteps(context.Background(), "Learn piano")

	require.NoError(t, err)
	assert.Equal(t, []string{"Find a teacher", "Buy a keyboard"}, steps)
	assert.Equal(t, "Learn piano", *gotTitle)
}

func TestClient_SuggestSteps_ZeroSuggestions(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"empty list", `{"steps":[]}`, []string{}},
		{"missing steps", `{}`, []string{}},
		{"steps not an array", `{"steps":"do it"}`, []string{}},
		{"steps null", `{"steps":null}`, []string{}},
		{"non-string entries dropped", `{"steps":["a",1,{"x":2},"","b"]}`, []string{"a", "b"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newService(t, http.StatusOK, tc.body)

			steps, err := suggest.NewClient(srv.URL).SuggestSteps(context.Background(), "x")

			require.NoError(t, err)
			assert.Equal(t, tc.want, steps)
		})
	}
}

func TestClient_SuggestSteps_NonSuccessWithMessage(t *testing.T) {
	srv, _ := newService(t, http.StatusBadGateway, `{"error":"The AI is taking a nap."}`)

	_, err := suggest.NewClient(srv.URL).SuggestSteps(context.Background(), "x")

	requireSuggestionError(t, err, "The AI is taking a nap.")
}

func TestClient_SuggestSteps_NonSuccessWithoutMessage(t *testing.T) {
	srv, _ := newService(t, http.StatusInternalServerError, `<html>oops</html>`)

	_, err := suggest.NewClient(srv.URL).SuggestSteps(context.Background(), "x")

	requireSuggestionError(t, err, suggest.FallbackMessage)
}

func TestClient_SuggestSteps_ServiceReportedErrorOn200(t *testing.T) {
	srv, _ := newService(t, http.StatusOK, `{"error":"quota exceeded"}`)

	_, err := suggest.NewClient(srv.URL).SuggestSteps(context.Background(), "x")

	requireSuggestionError(t, err, "quota exceeded")
}

func TestClient_SuggestSteps_UnparsableBody(t *testing.T) {
	srv, _ := newService(t, http.StatusOK, `["not","an","object"`)

	_, err := suggest.NewClient(srv.URL).SuggestSteps(context.Background(), "x")

	requireSuggestionError(t, err, suggest.FallbackMessage)
}

func TestClient_SuggestSteps_NetworkError(t *testing.T) {
	srv, _ := newService(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close() // nothing listens any more

	_, err := suggest.NewClient(url).SuggestSteps(context.Background(), "x")

	requireSuggestionError(t, err, suggest.FallbackMessage)
}

func TestClient_SuggestSteps_CanceledContext(t *testing.T) {
	srv, _ := newService(t, http.StatusOK, `{"steps":["a"]}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suggest.NewClient(srv.URL).SuggestSteps(ctx, "x")

	requireSuggestionError(t, err, suggest.FallbackMessage)
}

// Every call is an independent round trip; nothing is cached per title.
func TestClient_SuggestSteps_NoCaching(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"steps":["a"]}`))
	}))
	t.Cleanup(srv.Close)
	c := suggest.NewClient(srv.URL, suggest.WithHTTPClient(srv.Client()))

	for i := 0; i < 3; i++ {
		_, err := c.SuggestSteps(context.Background(), "same title")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, calls)
}
