package config

import (
	"strconv"
	"strings"
	"time"
)

type lookupFunc func(string) (string, bool)

// env applies non-empty environment values; unparsable values are ignored.
type env struct {
	lookup lookupFunc
}

func (e env) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e env) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e env) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e env) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func (e env) integer32(key string, dst *int32) {
	if v, ok := e.get(key); ok {
		if parsed, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(parsed)
		}
	}
}

func (e env) real32(key string, dst *float32) {
	if v, ok := e.get(key); ok {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			*dst = float32(parsed)
		}
	}
}

func (e env) boolean(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func (e env) duration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
