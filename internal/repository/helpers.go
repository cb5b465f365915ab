package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/drip/internal/domain"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s, column string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

func encodeAttrs(a domain.NodeAttrs) (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("encoding node attrs: %w", err)
	}
	return string(data), nil
}

func decodeAttrs(s string) (domain.NodeAttrs, error) {
	var a domain.NodeAttrs
	if s == "" {
		return a, nil
	}
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return a, fmt.Errorf("decoding node attrs: %w", err)
	}
	return a, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
