package messaging

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiValidatesConfig(t *testing.T) {
	_, err := NewGemini(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilConfig)

	_, err = NewGemini(context.Background(), &GeminiConfig{})
	assert.ErrorIs(t, err, ErrEmptyAPIKey)
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "Ho-ho-ho, Bogi, may your sleigh be full!"}},
				},
			}},
		})
	}))
	defer srv.Close()

	gen, err := NewGemini(context.Background(), &GeminiConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), "wish for Bogi")
	require.NoError(t, err)
	assert.Equal(t, "Ho-ho-ho, Bogi, may your sleigh be full!", text)
	assert.True(t, strings.HasSuffix(gotPath, "models/"+DefaultGeminiModel+":generateContent"), gotPath)
	assert.Contains(t, gotBody, "wish for Bogi")
}

func TestGeminiGenerateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad model","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	gen, err := NewGemini(context.Background(), &GeminiConfig{
		APIKey:     "test-key",
		Model:      "gemini-test",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "wish")
	assert.Error(t, err)
}
