// Package parsers turns free-form model output into the orchestrator's
// typed decisions. Inputs are size-bounded and anything outside the
// expected shape is an error for the caller's failure policy to handle.
package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tripgram/server/internal/agent/model"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 128 * 1024 // 128KB
	maxLabelLen   = 256
)

// ParseCategory extracts the classification category by case-insensitive
// substring match, data token first, then recommendation, else general.
func ParseCategory(content string) (model.Category, error) {
	if strings.TrimSpace(content) == "" {
		return model.CategoryData, fmt.Errorf("empty classification output")
	}
	if len(content) > maxContentLen {
		return model.CategoryData, fmt.Errorf("classification output too large")
	}
	upper := strings.ToUpper(content)
	switch {
	case strings.Contains(upper, "DATA"):
		return model.CategoryData, nil
	case strings.Contains(upper, "RECOMMEND"):
		return model.CategoryRecommendation, nil
	default:
		return model.CategoryOther, nil
	}
}

// ParseRouteLabel maps a supervisor reply onto the closed decision set.
// The label may be wrapped in whitespace, quotes or backticks but nothing
// looser; anything else is out of enumeration.
func ParseRouteLabel(content string) (model.RouteDecision, error) {
	if len(content) > maxLabelLen {
		return model.RouteFinish, fmt.Errorf("route label too large")
	}
	label := strings.Trim(strings.TrimSpace(content), "\"'` \t\n.")
	switch {
	case strings.EqualFold(label, model.WorkerDataRetrieval):
		return model.RouteDataRetrieval, nil
	case strings.EqualFold(label, model.WorkerRecommender):
		return model.RouteRecommender, nil
	case strings.EqualFold(label, model.WorkerAssistant):
		return model.RouteAssistant, nil
	case strings.EqualFold(label, model.FinishLabel):
		return model.RouteFinish, nil
	}
	return model.RouteFinish, fmt.Errorf("route label %q outside allowed set", label)
}

// ParseFinalResponse decodes the synthesizer's structured output: a JSON
// object with exactly one "response" string field. Code fences around the
// JSON are tolerated; any other deviation is an error.
func ParseFinalResponse(content string) (string, error) {
	if len(content) > maxContentLen {
		return "", fmt.Errorf("synthesis output too large")
	}
	trimmed := stripCodeFence(strings.TrimSpace(content))
	if trimmed == "" {
		return "", fmt.Errorf("empty synthesis output")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return "", fmt.Errorf("decode synthesis output: %w", err)
	}
	if len(fields) != 1 {
		return "", fmt.Errorf("synthesis output has %d fields, want exactly 1", len(fields))
	}
	raw, ok := fields["response"]
	if !ok {
		return "", fmt.Errorf("synthesis output missing response field")
	}
	var response string
	if err := json.Unmarshal(raw, &response); err != nil {
		return "", fmt.Errorf("response field is not a string: %w", err)
	}
	return response, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		// drop the language tag line
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
