package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	apperrors "github.com/yanqian/kai-insight/pkg/errors"
)

// CodeInvalidFormat is reported for an unknown export format.
const CodeInvalidFormat = "invalid_format"

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

type formatInfo struct {
	mime string
	ext  string
}

var formats = map[Format]formatInfo{
	FormatJSON:     {"application/json", "json"},
	FormatText:     {"text/plain", "txt"},
	FormatCSV:      {"text/csv", "csv"},
	FormatMarkdown: {"text/markdown", "md"},
	FormatHTML:     {"text/html", "html"},
	FormatXLSX:     {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"},
}

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatText, FormatCSV, FormatMarkdown, FormatHTML, FormatXLSX}
}

// ParseFormat accepts a format name or common alias (txt, md).
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "txt":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatJSON, nil
	default:
		if _, ok := formats[f]; ok {
			return f, nil
		}
		return "", apperrors.Wrap(CodeInvalidFormat, fmt.Sprintf("unsupported export format %q", name), nil)
	}
}

// MIMEType returns the download content type.
func (f Format) MIMEType() string {
	return formats[f].mime
}

// Document is a rendered export ready for download.
type Document struct {
	Filename string
	MIMEType string
	Body     []byte
}

// Render produces the document for format, stamping text reports with at.
func Render(format Format, r analysis.Result, at time.Time) (Document, error) {
	info, ok := formats[format]
	if !ok {
		return Document{}, apperrors.Wrap(CodeInvalidFormat, fmt.Sprintf("unsupported export format %q", format), nil)
	}

	var (
		body []byte
		err  error
	)
	switch format {
	case FormatJSON:
		var s string
		s, err = JSON(r)
		body = []byte(s)
	case FormatText:
		body = []byte(Text(r, at))
	case FormatCSV:
		body = []byte(CSV(r))
	case FormatMarkdown:
		body = []byte(Markdown(r, at))
	case FormatHTML:
		var s string
		s, err = HTML(r, at)
		body = []byte(s)
	case FormatXLSX:
		body, err = XLSX(r)
	}
	if err != nil {
		return Document{}, fmt.Errorf("render %s export: %w", format, err)
	}

	return Document{
		Filename: fmt.Sprintf("kai-analysis-%s.%s", at.Format("2006-01-02"), info.ext),
		MIMEType: info.mime,
		Body:     body,
	}, nil
}
