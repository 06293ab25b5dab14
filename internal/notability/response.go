package notability

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured means no LLM completer is available.
	ErrNotConfigured = errors.New("notability: llm tier not configured")
	// ErrMalformedResponse means the reply is not a JSON array of objects.
	ErrMalformedResponse = errors.New("notability: malformed llm response")
	// ErrLengthMismatch means the reply does not align with the batch.
	ErrLengthMismatch = errors.New("notability: decision count does not match batch")
)

// Decision is one position-aligned verdict from the LLM tier.
type Decision struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
	Summary  string `json:"summary"`
}

// Include reports whether the decision promotes the item.
func (d Decision) Include() bool {
	return strings.EqualFold(strings.TrimSpace(d.Decision), "include")
}

// ParseDecisions validates an LLM reply against a batch of size want. The
// reply is parsed directly first; failing that, the text between the first
// '[' and the last ']' is tried. Every element must be a JSON object.
func ParseDecisions(reply string, want int) ([]Decision, error) {
	raw, err := extractArray(reply)
	if err != nil {
		return nil, err
	}
	if len(raw) != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(raw), want)
	}
	out := make([]Decision, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformedResponse, i)
		}
		if err := json.Unmarshal(elem, &out[i]); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedResponse, i, err)
		}
	}
	return out, nil
}

func extractArray(reply string) ([]json.RawMessage, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(reply), &raw); err == nil && raw != nil {
		return raw, nil
	}
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array found", ErrMalformedResponse)
	}
	raw = nil
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return raw, nil
}
