package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/kai-insight/pkg/metrics"
)

func TestAnalyzeSuccessWithImage(t *testing.T) {
	t.Parallel()

	text := &stubText{responses: []TextResponse{{
		Text:  samplePayload,
		Usage: metrics.TokenUsage{PromptTokens: 120, CompletionTokens: 300, TotalTokens: 420},
	}}}
	images := &stubImages{img: Image{Data: []byte("png-bytes"), MIMEType: "image/png"}}
	svc, _ := newTestService(text, images)

	resp, err := svc.Analyze(context.Background(), Request{Text: "  Water, Sugar, Citric Acid  "})
	require.NoError(t, err)

	require.Equal(t, 1, text.calls)
	require.Equal(t, UserPrompt("Water, Sugar, Citric Acid"), text.requests[0].Prompt)
	require.Equal(t, float32(0.1), text.requests[0].Temperature)
	require.Equal(t, SystemInstruction, text.requests[0].SystemInstruction)
	require.NotNil(t, text.requests[0].Schema)

	require.Equal(t, 72, resp.Result.Score.Value)
	require.Equal(t, ConfidenceMedium, resp.Result.ProductIdentity.Confidence)
	require.NotNil(t, resp.Result.HealthRisk)
	require.Equal(t, RiskModerate, resp.Result.HealthRisk.Level)
	require.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", resp.Result.GeneratedImageURL)
	require.NotNil(t, resp.TokenUsage)
	require.Equal(t, 420, resp.TokenUsage.TotalTokens)

	require.Equal(t, 1, images.calls)
	require.Equal(t, "A chilled glass bottle of lemon soda. Studio lighting.", images.requests[0].Prompt)
	require.Equal(t, "1:1", images.requests[0].AspectRatio)
	require.Equal(t, "imagen-test", images.requests[0].Model)
}

func TestAnalyzeRejectsShortInputWithoutCallingProvider(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "too short", "\n\tabc\n"} {
		text := &stubText{}
		svc, _ := newTestService(text, nil)

		_, err := svc.Analyze(context.Background(), Request{Text: input})
		require.Error(t, err)
		require.Equal(t, KindValidation, Classify(err))
		require.Zero(t, text.calls, "input %q", input)
	}
}

func TestAnalyzeWithoutVisualPromptSkipsImage(t *testing.T) {
	t.Parallel()

	text := &stubText{responses: []TextResponse{{Text: payloadWithoutVisual}}}
	images := &stubImages{img: Image{Data: []byte("x")}}
	svc, _ := newTestService(text, images)

	resp, err := svc.Analyze(context.Background(), Request{Text: "Water, Sugar, Citric Acid"})
	require.NoError(t, err)
	require.Empty(t, resp.Result.GeneratedImageURL)
	require.Zero(t, images.calls)
	require.Nil(t, resp.TokenUsage)
}

func TestAnalyzeImageFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	cases := map[string]*stubImages{
		"error":       {err: NetworkError(errors.New("connection reset"))},
		"empty image": {img: Image{}},
	}
	for name, images := range cases {
		t.Run(name, func(t *testing.T) {
			text := &stubText{responses: []TextResponse{{Text: samplePayload}}}
			svc, _ := newTestService(text, images)

			resp, err := svc.Analyze(context.Background(), Request{Text: "Water, Sugar, Citric Acid"})
			require.NoError(t, err)
			require.Empty(t, resp.Result.GeneratedImageURL)
			require.Equal(t, "Soft Drink", resp.Result.ProductIdentity.Category)
			require.Equal(t, "A basic sweetened drink.", resp.Result.ExecutiveSummary)
			require.Len(t, resp.Result.FunctionalIngredients, 1)
		})
	}
}

func TestAnalyzeImagesDisabled(t *testing.T) {
	t.Parallel()

	text := &stubText{responses: []TextResponse{{Text: samplePayload}}}
	images := &stubImages{img: Image{Data: []byte("x")}}
	svc, _ := newTestService(text, images)
	svc.cfg.ImagesEnabled = false

	resp, err := svc.Analyze(context.Background(), Request{Text: "Water, Sugar, Citric Acid"})
	require.NoError(t, err)
	require.Empty(t, resp.Result.GeneratedImageURL)
	require.Zero(t, images.calls)
}

func TestAnalyzeMalformedPayloadIsParseError(t *testing.T) {
	t.Parallel()

	text := &stubText{responses: []TextResponse{{Text: "Sorry, I cannot help with that."}}}
	svc, slept := newTestService(text, nil)

	_, err := svc.Analyze(context.Background(), Request{Text: "Water, Sugar, Citric Acid"})
	require.Error(t, err)
	require.Equal(t, KindParse, Classify(err))
	require.Equal(t, 1, text.calls)
	require.Empty(t, *slept)
}

func TestAnalyzeRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	text := &stubText{
		errs:      []error{NetworkError(errors.New("connection reset")), errors.New("internal error")},
		responses: []TextResponse{{}, {}, {Text: samplePayload}},
	}
	svc, slept := newTestService(text, nil)

	resp, err := svc.Analyze(context.Background(), Request{Text: "Water, Sugar, Citric Acid"})
	require.NoError(t, err)
	require.Equal(t, 3, text.calls)
	require.Equal(t, 72, resp.Result.Score.Value)
	require.Len(t, *slept, 2)
}

func TestAnalyzeDoesNotRetryAuthFailure(t *testing.T) {
	t.Parallel()

	text := &stubText{errs: []error{errors.New("googleapi: Error 403: permission denied")}}
	svc, slept := newTestService(text, nil)

	_, err := svc.Analyze(context.Background(), Request{Text: "Water, Sugar, Citric Acid"})
	require.Error(t, err)
	require.Equal(t, KindAuth, Classify(err))
	require.Equal(t, 1, text.calls)
	require.Empty(t, *slept)
}
