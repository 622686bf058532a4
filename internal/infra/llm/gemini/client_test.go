package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

type stubModels struct {
	content     *genai.GenerateContentResponse
	images      *genai.GenerateImagesResponse
	err         error
	gotModel    string
	gotConfig   *genai.GenerateContentConfig
	gotContents []*genai.Content
	gotImageCfg *genai.GenerateImagesConfig
}

func (s *stubModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.gotModel, s.gotContents, s.gotConfig = model, contents, cfg
	return s.content, s.err
}

func (s *stubModels) GenerateImages(_ context.Context, model, _ string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	s.gotModel, s.gotImageCfg = model, cfg
	return s.images, s.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 80,
			TotalTokenCount:      200,
		},
	}
}

func TestGenerateText(t *testing.T) {
	t.Parallel()
	stub := &stubModels{content: textResponse(`{"score":72}`)}
	client := &Client{models: stub}

	resp, err := client.GenerateText(context.Background(), analysis.TextRequest{
		Model:             "gemini-2.0-flash-exp",
		SystemInstruction: "be precise",
		Prompt:            "INPUT",
		Schema:            analysis.ResultSchema(),
		Temperature:       0.1,
	})
	require.NoError(t, err)
	require.Equal(t, `{"score":72}`, resp.Text)
	require.Equal(t, 200, resp.Usage.TotalTokens)
	require.Equal(t, 80, resp.Usage.CompletionTokens)

	require.Equal(t, "gemini-2.0-flash-exp", stub.gotModel)
	require.Equal(t, "application/json", stub.gotConfig.ResponseMIMEType)
	require.InDelta(t, 0.1, *stub.gotConfig.Temperature, 1e-6)
	require.NotNil(t, stub.gotConfig.SystemInstruction)
	require.Equal(t, "INPUT", stub.gotContents[0].Parts[0].Text)
	require.Equal(t, genai.TypeObject, stub.gotConfig.ResponseSchema.Type)
}

func TestGenerateTextFailures(t *testing.T) {
	t.Parallel()
	blocked := &genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	}
	finishedUnsafe := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}
	cases := []struct {
		name string
		stub *stubModels
		want analysis.Kind
	}{
		{"quota", &stubModels{err: genai.APIError{Code: 429, Message: "Resource has been exhausted"}}, analysis.KindQuota},
		{"unauthorized", &stubModels{err: genai.APIError{Code: 403, Message: "forbidden"}}, analysis.KindAuth},
		{"bad key", &stubModels{err: genai.APIError{Code: 400, Message: "API key not valid"}}, analysis.KindAuth},
		{"rejected request", &stubModels{err: genai.APIError{Code: 400, Message: "Invalid JSON payload received"}}, analysis.KindUnknown},
		{"server", &stubModels{err: genai.APIError{Code: 503, Message: "overloaded"}}, analysis.KindUnknown},
		{"transport", &stubModels{err: errors.New("dial tcp: connection refused")}, analysis.KindNetwork},
		{"prompt blocked", &stubModels{content: blocked}, analysis.KindSafety},
		{"finish safety", &stubModels{content: finishedUnsafe}, analysis.KindSafety},
		{"empty", &stubModels{content: textResponse("  ")}, analysis.KindParse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := &Client{models: tc.stub}
			_, err := client.GenerateText(context.Background(), analysis.TextRequest{Prompt: "x"})
			require.Error(t, err)
			require.Equal(t, tc.want, analysis.Classify(err))
		})
	}
}

func TestGenerateTextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &Client{models: &stubModels{err: errors.New("request aborted")}}
	_, err := client.GenerateText(ctx, analysis.TextRequest{Prompt: "x"})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, analysis.KindNetwork, analysis.Classify(err))
}

func TestGenerateImage(t *testing.T) {
	t.Parallel()
	stub := &stubModels{images: &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}}},
	}}
	client := &Client{models: stub}

	img, err := client.GenerateImage(context.Background(), analysis.ImageRequest{Model: "imagen-4.0-generate-001", Prompt: "a bottle"})
	require.NoError(t, err)
	require.Equal(t, "image/png", img.MIMEType)
	require.Len(t, img.Data, 4)
	require.Equal(t, "1:1", stub.gotImageCfg.AspectRatio)
	require.True(t, stub.gotImageCfg.IncludeRAIReason)

	filtered := &Client{models: &stubModels{images: &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{RAIFilteredReason: "filtered"}},
	}}}
	_, err = filtered.GenerateImage(context.Background(), analysis.ImageRequest{Prompt: "x"})
	require.Equal(t, analysis.KindSafety, analysis.Classify(err))

	empty := &Client{models: &stubModels{images: &genai.GenerateImagesResponse{}}}
	_, err = empty.GenerateImage(context.Background(), analysis.ImageRequest{Prompt: "x"})
	require.Error(t, err)
}

func TestToSchema(t *testing.T) {
	t.Parallel()
	out := toSchema(analysis.ResultSchema())
	require.Equal(t, genai.TypeObject, out.Type)
	require.Contains(t, out.Required, "score")

	identity := out.Properties["productIdentity"]
	require.NotNil(t, identity)
	confidence := identity.Properties["confidence"]
	require.Equal(t, genai.TypeString, confidence.Type)
	require.Equal(t, "enum", confidence.Format)
	require.ElementsMatch(t, []string{"High", "Medium", "Low"}, confidence.Enum)

	score := out.Properties["score"].Properties["value"]
	require.Equal(t, genai.TypeInteger, score.Type)
	require.NotNil(t, score.Maximum)
	require.InDelta(t, 100, *score.Maximum, 0)

	require.Nil(t, toSchema(nil))
}
