package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Metrics is the dashboard snapshot served by GET /assets/metrics
type Metrics struct {
	TotalAssets        int          `json:"totalAssets"`
	ActiveAssets       int          `json:"activeAssets"`
	PendingTransfers   int          `json:"pendingTransfers"`
	ActiveAssignments  int          `json:"activeAssignments"`
	StatusDistribution StatusCounts `json:"statusDistribution"`
}

// StatusCount is one entry of a status distribution
type StatusCount struct {
	Status string
	Count  int
}

// StatusCounts is a status -> count mapping that keeps the order the
// backend sent the keys in.
type StatusCounts []StatusCount

// Get returns the count for a status and whether it was present
func (c StatusCounts) Get(status string) (int, bool) {
	for _, sc := range c {
		if sc.Status == status {
			return sc.Count, true
		}
	}
	return 0, false
}

// UnmarshalJSON decodes a JSON object token by token so key order survives
func (c *StatusCounts) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("status distribution: expected object, got %v", tok)
	}

	out := StatusCounts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("status distribution: expected key, got %v", keyTok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("status distribution %q: %w", key, err)
		}
		out = append(out, StatusCount{Status: key, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}

// MarshalJSON writes the mapping back as an object in the same order
func (c StatusCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sc.Status)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", sc.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
