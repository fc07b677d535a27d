package rosca

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Timestamps above this are taken to be Unix milliseconds.
const millisThreshold = 1e12

// looseNumber accepts a JSON number or a numeric string. Null and "" leave it unset.
type looseNumber struct {
	value float64
	set   bool
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	raw, err := decodeScalar(data)
	if err != nil || raw == nil {
		return err
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("expected a number, got %s", data)
	}
	n.value, n.set = v, true
	return nil
}

// headCount is the legacy "members" field: a count, a numeric string, or a list whose
// length is the count.
type headCount int

func (h *headCount) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		*h = headCount(len(list))
		return nil
	}
	var n looseNumber
	if err := n.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("members: %w", err)
	}
	*h = headCount(max(0, int(n.value)))
	return nil
}

// looseTime accepts RFC 3339 timestamps, calendar dates such as 2026-01-15, and Unix
// seconds or milliseconds as a number or numeric string.
type looseTime struct {
	value time.Time
	set   bool
}

func (t *looseTime) UnmarshalJSON(data []byte) error {
	raw, err := decodeScalar(data)
	if err != nil || raw == nil {
		return err
	}
	if n, err := cast.ToInt64E(raw); err == nil {
		t.value, t.set = fromUnix(n), true
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("expected a date, got %s", data)
	}
	v, err := cast.ToTimeE(s)
	if err != nil {
		return fmt.Errorf("expected a date, got %s", data)
	}
	t.value, t.set = v.UTC(), true
	return nil
}

func fromUnix(n int64) time.Time {
	if n > millisThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// decodeScalar returns nil for null and blank strings.
func decodeScalar(data []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case string:
		if v = strings.TrimSpace(v); v == "" {
			return nil, nil
		}
		return v, nil
	case float64, nil:
		return v, nil
	default:
		return nil, fmt.Errorf("expected a scalar, got %s", data)
	}
}
