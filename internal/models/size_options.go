package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// SizeOptions is the normalized set of sizes a product is sold in.
//
// Rows written by older tooling hold the column as a JSON array, a PostgreSQL
// array literal ({M,L}) or a comma separated string; all of them decode to the
// same trimmed, de-duplicated list. New rows are always written as JSON.
type SizeOptions []string

// ParseSizeOptions normalizes any supported representation.
func ParseSizeOptions(raw any) (SizeOptions, error) {
	switch v := raw.(type) {
	case nil:
		return SizeOptions{}, nil
	case SizeOptions:
		return normalizeSizes(v), nil
	case []string:
		return normalizeSizes(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return normalizeSizes(out), nil
	case []byte:
		return parseSizeString(string(v))
	case string:
		return parseSizeString(v)
	default:
		return nil, fmt.Errorf("unsupported size_options type %T", raw)
	}
}

func parseSizeString(s string) (SizeOptions, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return SizeOptions{}, nil
	case strings.HasPrefix(s, "["):
		var items []any
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return nil, fmt.Errorf("decode size_options: %w", err)
		}
		return ParseSizeOptions(items)
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		return normalizeSizes(strings.Split(s[1:len(s)-1], ",")), nil
	default:
		return normalizeSizes(strings.Split(s, ",")), nil
	}
}

func normalizeSizes(in []string) SizeOptions {
	out := make(SizeOptions, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.Trim(strings.TrimSpace(s), `"'`)
		if s == "" {
			continue
		}
		key := strings.ToUpper(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Match returns the canonical label of size, compared case-insensitively.
func (s SizeOptions) Match(size string) (string, bool) {
	size = strings.TrimSpace(size)
	for _, opt := range s {
		if strings.EqualFold(opt, size) {
			return opt, true
		}
	}
	return "", false
}

func (s SizeOptions) Contains(size string) bool {
	_, ok := s.Match(size)
	return ok
}

func (s *SizeOptions) Scan(value any) error {
	parsed, err := ParseSizeOptions(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s SizeOptions) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s SizeOptions) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// UnmarshalJSON accepts either an array or a delimited string.
func (s *SizeOptions) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSizeOptions(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// GormDataType keeps the column portable between PostgreSQL and SQLite.
func (SizeOptions) GormDataType() string { return "text" }
