package analysis

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

const samplePayload = `{
  "productIdentity": {"category": "Soft Drink", "confidence": "Medium", "elements": ["Water", "Sugar", "Citric Acid"]},
  "positiveAttributes": ["Short ingredient list"],
  "tradeoffs": ["High added sugar"],
  "functionalIngredients": [{"ingredient": "Citric Acid", "purpose": "Acidity regulator"}],
  "qualitySignals": "Simple formulation.",
  "awarenessFlags": [],
  "smartUsage": "Treat as an occasional drink.",
  "executiveSummary": "A basic sweetened drink.",
  "score": {"value": 72, "interpretation": "Decent but sugary."},
  "proactiveSuggestion": "Try the zero sugar variant.",
  "visualPrompt": "A chilled glass bottle of lemon soda",
  "healthRisk": {"score": 35, "level": "Moderate", "factors": ["Sugar"]}
}`

const payloadWithoutVisual = `{
  "productIdentity": {"category": "Soft Drink", "confidence": "Medium", "elements": []},
  "positiveAttributes": [],
  "tradeoffs": [],
  "functionalIngredients": [],
  "qualitySignals": "Simple.",
  "awarenessFlags": [],
  "smartUsage": "Occasionally.",
  "executiveSummary": "Basic.",
  "score": {"value": 72, "interpretation": "Fine."},
  "proactiveSuggestion": "None."
}`

type stubText struct {
	mu        sync.Mutex
	responses []TextResponse
	errs      []error
	calls     int
	requests  []TextRequest
}

func (s *stubText) GenerateText(_ context.Context, req TextRequest) (TextResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	s.calls++
	s.requests = append(s.requests, req)
	if idx < len(s.errs) && s.errs[idx] != nil {
		return TextResponse{}, s.errs[idx]
	}
	if len(s.responses) == 0 {
		return TextResponse{}, nil
	}
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

type stubImages struct {
	img      Image
	err      error
	calls    int
	requests []ImageRequest
}

func (s *stubImages) GenerateImage(_ context.Context, req ImageRequest) (Image, error) {
	s.calls++
	s.requests = append(s.requests, req)
	return s.img, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		Model:            "gemini-test",
		ImageModel:       "imagen-test",
		Temperature:      0.1,
		MinInputLen:      10,
		MaxInputLen:      10000,
		ImagesEnabled:    true,
		ImageStyleSuffix: ". Studio lighting.",
		ImageAspectRatio: "1:1",
		Retry:            RetryConfig{MaxRetries: 3, BaseDelay: time.Second},
	}
}

// newTestService returns a service whose backoff records delays instead of sleeping.
func newTestService(text TextGenerator, images ImageGenerator) (*service, *[]time.Duration) {
	svc := NewService(testConfig(), text, images, discardLogger()).(*service)
	var slept []time.Duration
	svc.retry.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return svc, &slept
}
