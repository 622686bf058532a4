package analysis

import (
	"context"
	"errors"
	"strings"
)

// markers is consulted only for errors that reached the pipeline untyped.
// Order is priority: the first kind with a matching marker wins.
var markers = []struct {
	kind    Kind
	needles []string
}{
	{KindQuota, []string{"quota", "429", "rate limit", "too many requests", "resource_exhausted"}},
	{KindNetwork, []string{"network", "fetch", "connection", "timeout", "no such host"}},
	{KindSafety, []string{"safety", "blocked"}},
	{KindAuth, []string{"api key", "401", "403", "unauthenticated", "permission denied"}},
	{KindParse, []string{"json", "parse"}},
}

// Classify returns the kind of err. Typed errors report their own kind.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	if typed, ok := AsError(err); ok {
		return typed.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	return classifyMessage(err.Error())
}

func classifyMessage(msg string) Kind {
	msg = strings.ToLower(msg)
	for _, m := range markers {
		for _, needle := range m.needles {
			if strings.Contains(msg, needle) {
				return m.kind
			}
		}
	}
	return KindUnknown
}

var userMessages = map[Kind]string{
	KindQuota:   "API quota exceeded. Please try again later or check your API limits.",
	KindNetwork: "Network error. Please check your internet connection and try again.",
	KindSafety:  "Content was blocked by safety filters. Please try different input text.",
	KindAuth:    "The analysis service is not configured correctly. Please contact support.",
	KindParse:   "The analysis could not be structured. Please try again.",
	KindUnknown: "Failed to analyze product label. Please try again.",
}

// UserMessage renders err for end users. Provider text never leaks through;
// validation messages are already user-facing and pass as-is.
func UserMessage(err error) string {
	kind := Classify(err)
	if kind == KindValidation {
		if typed, ok := AsError(err); ok && typed.Message != "" {
			return typed.Message
		}
	}
	if msg, ok := userMessages[kind]; ok {
		return msg
	}
	return userMessages[KindUnknown]
}
