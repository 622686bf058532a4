package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient("sk-test", srv.URL+"/v1")
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Parallel()
	_, err := NewClient(" ", "")
	require.Error(t, err)
}

func TestGenerateText(t *testing.T) {
	t.Parallel()
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []any{map[string]any{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": `{"score":{"value":72}}`}}},
			"usage":   map[string]any{"prompt_tokens": 90, "completion_tokens": 30, "total_tokens": 120},
		})
	})

	resp, err := client.GenerateText(context.Background(), analysis.TextRequest{
		Model:             "gpt-4o-mini",
		SystemInstruction: "be precise",
		Prompt:            "INPUT",
		Schema:            analysis.ResultSchema(),
	})
	require.NoError(t, err)
	require.Equal(t, `{"score":{"value":72}}`, resp.Text)
	require.Equal(t, 120, resp.Usage.TotalTokens)

	require.Equal(t, "gpt-4o-mini", got["model"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	require.Equal(t, "system", messages[0].(map[string]any)["role"])
	format := got["response_format"].(map[string]any)
	require.Equal(t, "json_schema", format["type"])
	schema := format["json_schema"].(map[string]any)["schema"].(map[string]any)
	require.Equal(t, "object", schema["type"])
}

func TestGenerateTextFailures(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    analysis.Kind
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "Rate limit reached", "type": "requests", "code": "rate_limit_exceeded"}})
			},
			want: analysis.KindQuota,
		},
		{
			name: "bad key",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}})
			},
			want: analysis.KindAuth,
		},
		{
			name: "rejected request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"message": "Invalid value for 'max_tokens'", "type": "invalid_request_error"}})
			},
			want: analysis.KindUnknown,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusInternalServerError, map[string]any{"error": map[string]any{"message": "boom", "type": "server_error"}})
			},
			want: analysis.KindUnknown,
		},
		{
			name: "content filter",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"choices": []any{map[string]any{"finish_reason": "content_filter", "message": map[string]any{"role": "assistant", "content": ""}}}})
			},
			want: analysis.KindSafety,
		},
		{
			name: "empty",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"choices": []any{}})
			},
			want: analysis.KindParse,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, tc.handler)
			_, err := client.GenerateText(context.Background(), analysis.TextRequest{Model: "gpt-4o-mini", Prompt: "x"})
			require.Error(t, err)
			require.Equal(t, tc.want, analysis.Classify(err))
		})
	}
}

func TestGenerateTextUnreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	client, err := NewClient("sk-test", base)
	require.NoError(t, err)

	_, err = client.GenerateText(context.Background(), analysis.TextRequest{Prompt: "x"})
	require.Equal(t, analysis.KindNetwork, analysis.Classify(err))
}

func TestGenerateImage(t *testing.T) {
	t.Parallel()
	png := []byte("\x89PNG\r\n\x1a\n0000")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "b64_json", body["response_format"])
		assert.Equal(t, "1024x1024", body["size"])
		writeJSON(w, http.StatusOK, map[string]any{"created": 1, "data": []any{map[string]any{"b64_json": base64.StdEncoding.EncodeToString(png)}}})
	})

	img, err := client.GenerateImage(context.Background(), analysis.ImageRequest{Model: "dall-e-3", Prompt: "a bottle", AspectRatio: "1:1"})
	require.NoError(t, err)
	require.Equal(t, png, img.Data)
	require.Equal(t, "image/png", img.MIMEType)
}

func TestGenerateImagePolicyViolation(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"message": "Your request was rejected", "type": "invalid_request_error", "code": "content_policy_violation"}})
	})
	_, err := client.GenerateImage(context.Background(), analysis.ImageRequest{Prompt: "x"})
	require.Equal(t, analysis.KindSafety, analysis.Classify(err))
}

func TestImageSize(t *testing.T) {
	t.Parallel()
	require.Equal(t, "1792x1024", imageSize("16:9"))
	require.Equal(t, "1024x1792", imageSize("9:16"))
	require.Equal(t, "1024x1024", imageSize(""))
}
