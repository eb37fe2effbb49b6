package suggest

import (
	"encoding/json"
	"strings"
)

// Request is the body sent to a suggestion service.
type Request struct {
	GoalTitle string `json:"goalTitle" validate:"required"`
}

// Response is the body a suggestion service answers with.
// Error is set instead of Steps when the service reports a failure.
type Response struct {
	Steps []string `json:"steps,omitempty"`
	Error string   `json:"error,omitempty"`
}

// rawResponse defers decoding of steps so a wrongly shaped list degrades to
// zero suggestions instead of failing the whole body.
type rawResponse struct {
	Steps json.RawMessage `json:"steps"`
	Error json.RawMessage `json:"error"`
}

// parseSteps extracts the string entries of a steps array, in order.
// Anything that is not an array yields nil. Non-string and blank entries are dropped.
func parseSteps(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	steps := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

// parseErrorMessage returns the service-reported error string, if there is one.
func parseErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// decodeResponse parses a response body. ok is false when the body is not a JSON object.
func decodeResponse(body []byte) (steps []string, serviceErr string, ok bool) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", false
	}
	return parseSteps(raw.Steps), parseErrorMessage(raw.Error), true
}
