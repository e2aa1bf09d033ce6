package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// localTimestampLayout is ISO-8601 without a UTC offset, as written by
// producers that use naive local timestamps
const localTimestampLayout = "2006-01-02T15:04:05.999999999"

// Category of a feed source
type Category string

const (
	CategoryNews   Category = "news"
	CategoryMarket Category = "market"
)

// Source is a named origin that records are attributed to
type Source struct {
	Name     string   `json:"name" toml:"name" validate:"required"`
	Category Category `json:"category" toml:"category" validate:"required,oneof=news market"`
	BaseURLs []string `json:"base_urls" toml:"base_urls" validate:"required,min=1,dive,url"`
}

// Record is one synthetic feed item. Records are never modified after they
// are generated.
type Record struct {
	Id         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Url        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
	SourceName string    `json:"source_name"`
}

// UnmarshalJSON accepts created_at either as RFC 3339 or as an ISO-8601
// timestamp without an offset, which is read as UTC
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		CreatedAt *timestamp `json:"created_at"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CreatedAt != nil {
		r.CreatedAt = time.Time(*aux.CreatedAt)
	}
	return nil
}

type timestamp time.Time

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("created_at must be a string: %w", err)
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = timestamp(parsed)
	return nil
}

// ParseTimestamp parses RFC 3339 first, then ISO-8601 without an offset as UTC
func ParseTimestamp(s string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return parsed, nil
	}

	parsed, err := time.ParseInLocation(localTimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_at %q: %w", s, err)
	}
	return parsed, nil
}

// RecordEvent fired when a record has been written to the buffer
type RecordEvent struct {
	Record Record
}

// SourceCount is the number of buffered records attributed to a source
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}
