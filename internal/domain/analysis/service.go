package analysis

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/kai-insight/pkg/metrics"
)

// Service exposes product label analysis.
type Service interface {
	Analyze(ctx context.Context, req Request) (Response, error)
	Compare(ctx context.Context, req CompareRequest) (Comparison, error)
}

// TextRequest is the structured-output call issued to a TextGenerator.
type TextRequest struct {
	Model             string
	SystemInstruction string
	Prompt            string
	Schema            *Schema
	Temperature       float32
}

// TextResponse carries the raw JSON payload and token usage when reported.
type TextResponse struct {
	Text  string
	Usage metrics.TokenUsage
}

// TextGenerator is implemented by LLM adapters. Failures should be *Error values.
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (TextResponse, error)
}

type ImageRequest struct {
	Model       string
	Prompt      string
	AspectRatio string
}

// Image is raw generated image bytes.
type Image struct {
	Data     []byte
	MIMEType string
}

// ImageGenerator is implemented by image-capable adapters.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (Image, error)
}

type service struct {
	cfg    Config
	text   TextGenerator
	images ImageGenerator
	retry  retrier
	schema *Schema
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the analysis pipeline. images may be nil, which disables image generation.
func NewService(cfg Config, text TextGenerator, images ImageGenerator, logger *slog.Logger) Service {
	svc := &service{
		cfg:    cfg,
		text:   text,
		images: images,
		retry:  newRetrier(cfg.Retry),
		schema: ResultSchema(),
		logger: logger.With("component", "analysis.service"),
		now:    time.Now,
	}
	svc.retry.onRetry = func(attempt int, delay time.Duration, err error) {
		svc.logger.Warn("text generation failed, retrying", "attempt", attempt, "delay", delay, "kind", Classify(err), "error", err)
	}
	return svc
}

func (s *service) Analyze(ctx context.Context, req Request) (Response, error) {
	text, err := NormalizeInput(req.Text, s.cfg.MinInputLen, s.cfg.MaxInputLen)
	if err != nil {
		return Response{}, err
	}

	start := s.now()
	result, usage, err := s.analyzeText(ctx, text)
	if err != nil {
		return Response{}, err
	}
	s.attachImage(ctx, &result)

	resp := Response{
		Result:     result,
		DurationMs: s.now().Sub(start).Milliseconds(),
	}
	if !usage.IsZero() {
		resp.TokenUsage = &usage
	}
	return resp, nil
}

func (s *service) analyzeText(ctx context.Context, text string) (Result, metrics.TokenUsage, error) {
	call := TextRequest{
		Model:             s.cfg.Model,
		SystemInstruction: SystemInstruction,
		Prompt:            UserPrompt(text),
		Schema:            s.schema,
		Temperature:       s.cfg.Temperature,
	}
	resp, err := retryVal(ctx, s.retry, func(ctx context.Context) (TextResponse, error) {
		return s.text.GenerateText(ctx, call)
	})
	if err != nil {
		s.logger.Error("text generation failed", "kind", Classify(err), "error", err)
		return Result{}, metrics.TokenUsage{}, err
	}
	s.logger.Debug("text generation response received", "bytes", len(resp.Text))

	result, err := ParseResult(resp.Text, s.schema)
	if err != nil {
		s.logger.Error("analysis response malformed", "error", err)
		return Result{}, metrics.TokenUsage{}, err
	}
	return result, resp.Usage, nil
}

// attachImage never fails the analysis; any problem leaves GeneratedImageURL empty.
func (s *service) attachImage(ctx context.Context, result *Result) {
	prompt := strings.TrimSpace(result.VisualPrompt)
	if prompt == "" || s.images == nil || !s.cfg.ImagesEnabled {
		return
	}
	img, err := s.images.GenerateImage(ctx, ImageRequest{
		Model:       s.cfg.ImageModel,
		Prompt:      ImagePrompt(prompt, s.cfg.ImageStyleSuffix),
		AspectRatio: s.cfg.ImageAspectRatio,
	})
	if err != nil {
		s.logger.Warn("image generation failed, continuing without image", "kind", Classify(err), "error", err)
		return
	}
	if len(img.Data) == 0 {
		s.logger.Warn("image generation returned no image")
		return
	}
	result.GeneratedImageURL = DataURL(img)
}

// DataURL encodes an image as a base64 data URL, assuming PNG when the MIME type is unknown.
func DataURL(img Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
