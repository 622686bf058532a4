package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultMinInputLen = 10
	defaultMaxInputLen = 10000
)

var numberPrinter = message.NewPrinter(language.English)

// NormalizeInput trims raw label text and enforces the length bounds (in runes).
// Non-positive bounds fall back to 10 and 10,000.
func NormalizeInput(raw string, minLen, maxLen int) (string, error) {
	if minLen <= 0 {
		minLen = defaultMinInputLen
	}
	if maxLen <= 0 {
		maxLen = defaultMaxInputLen
	}
	text := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(text)
	switch {
	case n == 0:
		return "", ValidationError("Please enter some text to analyze")
	case n < minLen:
		return "", ValidationError(fmt.Sprintf("Text is too short. Please provide at least %d characters", minLen))
	case n > maxLen:
		return "", ValidationError(fmt.Sprintf("Text is too long. Please limit to %s characters", numberPrinter.Sprintf("%d", maxLen)))
	}
	return text, nil
}
