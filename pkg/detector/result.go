package detector

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/dmitrymomot/detectkit/pkg/apiclient"
)

// Verdict is the normalized outcome of a detection.
type Verdict string

const (
	VerdictHuman   Verdict = "human"
	VerdictAI      Verdict = "ai"
	VerdictUnknown Verdict = "unknown"
)

// ParseVerdict maps a backend verdict string onto Verdict.
func ParseVerdict(s string) Verdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human":
		return VerdictHuman
	case "ai", "ai_generated", "ai-generated":
		return VerdictAI
	default:
		return VerdictUnknown
	}
}

// Result is a detection report. Raw keeps the backend object as received.
type Result struct {
	ID          string          `json:"id"`
	Verdict     Verdict         `json:"verdict"`
	PreviewURL  string          `json:"preview_url,omitempty"`
	HasFeedback bool            `json:"has_feedback"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// Feedback is a verdict correction for a prior result.
type Feedback struct {
	ResultID  string
	IsCorrect bool
	Comment   string
}

type feedbackBody struct {
	IsProperPredict bool   `json:"is_proper_predict"`
	Comment         string `json:"comment"`
}

// ParseResult normalizes a backend report object. Unknown fields are ignored
// and missing ones stay zero; only a body that is not a JSON object fails.
func ParseResult(raw json.RawMessage) (Result, error) {
	obj, err := apiclient.Decode[map[string]json.RawMessage](raw)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		ID:      stringField(obj, "id"),
		Verdict: VerdictUnknown,
		Raw:     raw,
	}

	verdict := stringField(obj, "verdict")
	for _, nested := range []string{"report", "result"} {
		if verdict != "" {
			break
		}
		if inner, ok := objectField(obj, nested); ok {
			verdict = stringField(inner, "verdict")
		}
	}
	res.Verdict = ParseVerdict(verdict)

	for _, k := range []string{"url", "preview_url", "image_url"} {
		if v := stringField(obj, k); v != "" {
			res.PreviewURL = v
			break
		}
	}

	_, res.HasFeedback = obj["is_proper_predict"]
	return res, nil
}

// ParseResults normalizes a JSON array of report objects.
func ParseResults(raw json.RawMessage) ([]Result, error) {
	items, err := apiclient.Decode[[]json.RawMessage](raw)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(items))
	for _, item := range items {
		r, err := ParseResult(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// stringField reads a string or number field as text.
func stringField(obj map[string]json.RawMessage, key string) string {
	v := bytes.TrimSpace(obj[key])
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

func objectField(obj map[string]json.RawMessage, key string) (map[string]json.RawMessage, bool) {
	v, ok := obj[key]
	if !ok {
		return nil, false
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(v, &inner); err != nil || inner == nil {
		return nil, false
	}
	return inner, true
}
