package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/pkg/metrics"
)

const contentPolicyViolation = "content_policy_violation"

// Client adapts OpenAI chat completions and image generation to the analysis ports.
type Client struct {
	api *openai.Client
}

// NewClient constructs an OpenAI client. baseURL may be empty.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key cannot be empty")
	}
	cfg := openai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{api: openai.NewClientWithConfig(cfg)}, nil
}

// GenerateText asks for a JSON object that follows req.Schema.
func (c *Client) GenerateText(ctx context.Context, req analysis.TextRequest) (analysis.TextResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemInstruction})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chat := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if req.Schema != nil {
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "product_analysis",
				Schema: toDefinition(req.Schema),
			},
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chat)
	if err != nil {
		return analysis.TextResponse{}, classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return analysis.TextResponse{}, analysis.ParseError(errors.New("openai returned no choices"))
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return analysis.TextResponse{}, analysis.SafetyBlockError("response blocked by content filter")
	}
	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		return analysis.TextResponse{}, analysis.SafetyBlockError(refusal)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return analysis.TextResponse{}, analysis.ParseError(errors.New("openai returned an empty response"))
	}
	return analysis.TextResponse{
		Text: choice.Message.Content,
		Usage: metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// GenerateImage renders one square image returned as base64.
func (c *Client) GenerateImage(ctx context.Context, req analysis.ImageRequest) (analysis.Image, error) {
	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          req.Model,
		N:              1,
		Size:           imageSize(req.AspectRatio),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return analysis.Image{}, classify(ctx, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return analysis.Image{}, analysis.UnknownError(errors.New("openai returned no image data"))
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return analysis.Image{}, analysis.ParseError(fmt.Errorf("decode image: %w", err))
	}
	return analysis.Image{Data: data, MIMEType: http.DetectContentType(data)}, nil
}

func imageSize(aspect string) string {
	switch aspect {
	case "16:9":
		return openai.CreateImageSize1792x1024
	case "9:16":
		return openai.CreateImageSize1024x1792
	default:
		return openai.CreateImageSize1024x1024
	}
}

// classify turns an SDK failure into a typed analysis error.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return analysis.NetworkError(ctxErr)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, _ := apiErr.Code.(string); code == contentPolicyViolation {
			return analysis.SafetyBlockError(apiErr.Message)
		}
		return byStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return byStatus(reqErr.HTTPStatusCode, err)
	}
	return analysis.NetworkError(err)
}

func byStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return analysis.QuotaError(err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return analysis.AuthError(err)
	default:
		return analysis.UnknownError(err)
	}
}

var schemaTypes = map[analysis.Type]jsonschema.DataType{
	analysis.TypeObject:  jsonschema.Object,
	analysis.TypeArray:   jsonschema.Array,
	analysis.TypeString:  jsonschema.String,
	analysis.TypeInteger: jsonschema.Integer,
	analysis.TypeNumber:  jsonschema.Number,
	analysis.TypeBoolean: jsonschema.Boolean,
}

// toDefinition converts the provider-neutral schema to JSON Schema.
// Range bounds are stated in descriptions and enforced when the payload is conformed.
func toDefinition(s *analysis.Schema) *jsonschema.Definition {
	def := &jsonschema.Definition{
		Type:        schemaTypes[s.Type],
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	if s.Items != nil {
		def.Items = toDefinition(s.Items)
	}
	if len(s.Properties) > 0 {
		def.Properties = make(map[string]jsonschema.Definition, len(s.Properties))
		for name, prop := range s.Properties {
			def.Properties[name] = *toDefinition(prop)
		}
	}
	return def
}

var (
	_ analysis.TextGenerator  = (*Client)(nil)
	_ analysis.ImageGenerator = (*Client)(nil)
)
