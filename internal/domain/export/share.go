package export

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

// SharePayload is what a platform share sheet receives.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Summary is the short clipboard form of a result.
func Summary(r analysis.Result) string {
	return fmt.Sprintf("%s - Score: %d/100\n\n%s", r.ProductIdentity.Category, r.Score.Value, r.ExecutiveSummary)
}

// Share builds the share-sheet payload.
func Share(r analysis.Result) SharePayload {
	return SharePayload{
		Title: "kai Analysis: " + r.ProductIdentity.Category,
		Text:  fmt.Sprintf("Intelligence Score: %d/100\n\n%s", r.Score.Value, r.ExecutiveSummary),
	}
}

// Mailto composes a mailto: link carrying the text report as its body.
func Mailto(r analysis.Result, at time.Time) string {
	subject := "kai Analysis: " + r.ProductIdentity.Category
	return "mailto:?subject=" + mailtoEscape(subject) + "&body=" + mailtoEscape(Text(r, at))
}

// mailtoEscape percent-encodes for a mailto query; mail clients expect %20, not '+'.
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var errNotDataURL = errors.New("not a base64 image data URL")

func isImageDataURL(s string) bool {
	_, _, ok := splitDataURL(s)
	return ok
}

func splitDataURL(s string) (mime, payload string, ok bool) {
	rest, found := strings.CutPrefix(s, "data:")
	if !found {
		return "", "", false
	}
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mime, found = strings.CutSuffix(meta, ";base64")
	if !found || !strings.HasPrefix(mime, "image/") {
		return "", "", false
	}
	return mime, payload, true
}

// DecodeImage extracts the MIME type and bytes of a generated image data URL.
func DecodeImage(dataURL string) (string, []byte, error) {
	mime, payload, ok := splitDataURL(dataURL)
	if !ok {
		return "", nil, errNotDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}
	return mime, data, nil
}
