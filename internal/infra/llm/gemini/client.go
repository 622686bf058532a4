package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/pkg/metrics"
)

// models is the slice of *genai.Models the adapter calls.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client adapts the Gemini API to the analysis text and image ports.
type Client struct {
	models models
}

// NewClient dials the Gemini developer API. baseURL may be empty.
func NewClient(ctx context.Context, apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{models: client.Models}, nil
}

// GenerateText requests a JSON response constrained by req.Schema.
func (c *Client) GenerateText(ctx context.Context, req analysis.TextRequest) (analysis.TextResponse, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   toSchema(req.Schema),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}
	resp, err := c.models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return analysis.TextResponse{}, classify(ctx, err)
	}
	if reason := blockReason(resp); reason != "" {
		return analysis.TextResponse{}, analysis.SafetyBlockError(reason)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return analysis.TextResponse{}, analysis.ParseError(errors.New("gemini returned an empty response"))
	}
	return analysis.TextResponse{Text: text, Usage: usage(resp.UsageMetadata)}, nil
}

// GenerateImage renders one image for the prompt.
func (c *Client) GenerateImage(ctx context.Context, req analysis.ImageRequest) (analysis.Image, error) {
	aspect := req.AspectRatio
	if aspect == "" {
		aspect = "1:1"
	}
	resp, err := c.models.GenerateImages(ctx, req.Model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		AspectRatio:      aspect,
		IncludeRAIReason: true,
	})
	if err != nil {
		return analysis.Image{}, classify(ctx, err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return analysis.Image{}, analysis.UnknownError(errors.New("gemini returned no images"))
	}
	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			return analysis.Image{}, analysis.SafetyBlockError(generated.RAIFilteredReason)
		}
		return analysis.Image{}, analysis.UnknownError(errors.New("gemini returned an empty image"))
	}
	return analysis.Image{Data: generated.Image.ImageBytes, MIMEType: generated.Image.MIMEType}, nil
}

func blockReason(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		if fb.BlockReasonMessage != "" {
			return fb.BlockReasonMessage
		}
		return string(fb.BlockReason)
	}
	for _, cand := range resp.Candidates {
		switch cand.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
			return "response blocked: " + string(cand.FinishReason)
		}
	}
	return ""
}

func usage(meta *genai.GenerateContentResponseUsageMetadata) metrics.TokenUsage {
	if meta == nil {
		return metrics.TokenUsage{}
	}
	return metrics.TokenUsage{
		PromptTokens:     int(meta.PromptTokenCount),
		CompletionTokens: int(meta.CandidatesTokenCount),
		TotalTokens:      int(meta.TotalTokenCount),
	}
}

// classify turns an SDK failure into a typed analysis error.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return analysis.NetworkError(ctxErr)
	}
	code, msg, ok := apiError(err)
	if !ok {
		return analysis.NetworkError(err)
	}
	switch {
	case code == http.StatusTooManyRequests:
		return analysis.QuotaError(err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return analysis.AuthError(err)
	case code == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "api key"):
		return analysis.AuthError(err)
	default:
		return analysis.UnknownError(err)
	}
}

func apiError(err error) (int, string, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value.Code, value.Message, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code, ptr.Message, true
	}
	return 0, "", false
}

var (
	_ analysis.TextGenerator  = (*Client)(nil)
	_ analysis.ImageGenerator = (*Client)(nil)
)
