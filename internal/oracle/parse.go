package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from oracle")

// stripFences removes a surrounding markdown code fence (``` or ```json).
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		} else {
			text = strings.TrimPrefix(strings.TrimPrefix(text, "```json"), "```")
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}

// decodeJSON strips fences and unmarshals text into v.
func decodeJSON(text string, v any) error {
	text = stripFences(text)
	if text == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("parse oracle response as JSON: %w", err)
	}
	return nil
}

func parseClassification(text string) (*RawClassification, error) {
	var c RawClassification
	if err := decodeJSON(text, &c); err != nil {
		return nil, err
	}
	if c.IssueType == "" && c.Severity == "" && c.Department == "" {
		return nil, errors.New("oracle classification has no fields")
	}
	return &c, nil
}

func parseSuggestions(text string) ([]Suggestion, error) {
	var out struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := decodeJSON(text, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

func parseVerdict(text string) (*Verdict, error) {
	// resolved is required; a missing field must not read as false-but-valid
	var raw struct {
		Resolved    *bool   `json:"resolved"`
		Confidence  float64 `json:"confidence"`
		Explanation string  `json:"explanation"`
	}
	if err := decodeJSON(text, &raw); err != nil {
		return nil, err
	}
	if raw.Resolved == nil {
		return nil, errors.New("oracle verdict has no resolved field")
	}
	return &Verdict{Resolved: *raw.Resolved, Confidence: raw.Confidence, Explanation: raw.Explanation}, nil
}
