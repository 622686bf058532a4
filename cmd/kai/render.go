package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/internal/domain/export"
)

var badgeColors = map[string]lipgloss.Color{
	"Excellent": lipgloss.Color("#16a34a"),
	"Good":      lipgloss.Color("#0d9488"),
	"Moderate":  lipgloss.Color("#ca8a04"),
	"Poor":      lipgloss.Color("#dc2626"),
}

// scoreBadge renders "72/100 Good" on the rating colour.
func scoreBadge(score int) string {
	rating := analysis.Rating(score)
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Background(badgeColors[rating]).
		Padding(0, 1).
		Render(fmt.Sprintf("%d/100 %s", score, rating))
}

// writeResult prints r in format, or as terminal-styled markdown when render is set.
// Text output is preceded by the score badge; machine formats are written untouched.
func writeResult(w io.Writer, r analysis.Result, format string, render bool, at time.Time) error {
	if render {
		out, err := renderMarkdown(export.Markdown(r, at))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, scoreBadge(r.Score.Value))
		_, err = io.WriteString(w, out)
		return err
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	if f == export.FormatXLSX {
		return fmt.Errorf("xlsx is binary, use kai export --out")
	}
	doc, err := export.Render(f, r, at)
	if err != nil {
		return err
	}
	if f == export.FormatText {
		fmt.Fprintln(w, scoreBadge(r.Score.Value))
	}
	_, err = w.Write(doc.Body)
	return err
}

func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", fmt.Errorf("init markdown renderer: %w", err)
	}
	return renderer.Render(md)
}
