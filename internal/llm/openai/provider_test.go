package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/Rrens/slidecraft/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_SendsSchemaAndParsesPayload(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"title\":\"Demo\",\"slides\":[]}"}}],"usage":{"total_tokens":42}}`))
	}))
	defer srv.Close()

	p := NewCompatible(Options{
		Name:         "openai",
		BaseURL:      srv.URL,
		APIKey:       "sk-test",
		DefaultModel: "gpt-4o-mini",
		StrictSchema: true,
	})
	resp, err := p.Invoke(context.Background(), llm.Request{
		System: llm.SystemPrompt,
		Prompt: "make a deck",
		Schema: llm.CreateDeckSchema(),
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	assert.Equal(t, "object", got.ResponseFormat.JSONSchema.Schema.Type)

	assert.JSONEq(t, `{"title":"Demo","slides":[]}`, string(resp.Payload))
	assert.Equal(t, 42, resp.TokensUsed)
}

func TestInvoke_NonJSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"sorry, I cannot"}}]}`))
	}))
	defer srv.Close()

	p := NewCompatible(Options{Name: "openai", BaseURL: srv.URL, APIKey: "sk-test", DefaultModel: "gpt-4o"})
	_, err := p.Invoke(context.Background(), llm.Request{Prompt: "x"}, "")
	assert.True(t, errors.Is(err, domain.ErrInferenceFailure))
}

func TestInvoke_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	p := NewCompatible(Options{Name: "openai", BaseURL: srv.URL, APIKey: "sk-test", DefaultModel: "gpt-4o"})
	_, err := p.Invoke(context.Background(), llm.Request{Prompt: "x"}, "")

	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.EqualError(t, err, `openai returned status 429: {"error":"rate limited"}`)
}

func TestInvoke_JSONModeWithoutStrictSchema(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"title\":\"T\",\"slides\":[]}"}}]}`))
	}))
	defer srv.Close()

	p := NewCompatible(Options{Name: "deepseek", BaseURL: srv.URL, APIKey: "k", DefaultModel: "deepseek-chat"})
	resp, err := p.Invoke(context.Background(), llm.Request{Prompt: "x", Schema: llm.CreateDeckSchema()}, "")
	require.NoError(t, err)

	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	assert.Nil(t, got.ResponseFormat.JSONSchema)
	assert.Equal(t, "deepseek-chat", resp.Model)
}
