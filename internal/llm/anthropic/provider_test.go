package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/slidecraft/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{
			"content":[{"type":"text","text":"Here you go:\n{\"title\":\"T\",\"slides\":[]}"}],
			"usage":{"input_tokens":7,"output_tokens":3}
		}`))
	}))
	defer srv.Close()

	p := newProvider("key", "", srv.URL)
	resp, err := p.Invoke(context.Background(), llm.Request{System: "sys", Prompt: "deck"}, "")
	require.NoError(t, err)

	assert.Equal(t, "sys", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "deck", got.Messages[0].Content)

	assert.JSONEq(t, `{"title":"T","slides":[]}`, string(resp.Payload))
	assert.Equal(t, 10, resp.TokensUsed)
	assert.Equal(t, "claude-3-5-sonnet-20241022", resp.Model)
}

func TestInvoke_NoTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	_, err := newProvider("key", "", srv.URL).Invoke(context.Background(), llm.Request{Prompt: "x"}, "")
	assert.EqualError(t, err, "no text content in anthropic response")
}
