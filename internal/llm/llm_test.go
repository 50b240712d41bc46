package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestThoughtFilter(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []string
		response string
		thoughts string
	}{
		{
			name:     "plain response",
			chunks:   []string{"Hello", ", ", "world"},
			response: "Hello, world",
		},
		{
			name:     "reasoning first",
			chunks:   []string{"<think>", "hmm", "</think>", "\nAnswer"},
			response: "\nAnswer",
			thoughts: "hmm",
		},
		{
			name:     "tag split across chunks",
			chunks:   []string{"  <thi", "nk>a", "b</th", "ink>done"},
			response: "done",
			thoughts: "ab",
		},
		{
			name:     "angle bracket later is kept",
			chunks:   []string{"Use ", "<b>", "bold", "</b>"},
			response: "Use <b>bold</b>",
		},
		{
			name:     "unclosed reasoning returns everything",
			chunks:   []string{"<3 ", "you"},
			response: "<3 you",
			thoughts: "<3 you",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := thoughtFilter{}
			for _, c := range tt.chunks {
				f.Write(c)
			}

			assert.Equal(t, tt.response, f.Response())
			assert.Equal(t, tt.thoughts, f.Thoughts())
		})
	}
}

func TestOllamaGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Token"))

		if r.URL.Path != "/api/generate" {
			w.WriteHeader(http.StatusOK)
			return
		}

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		for _, chunk := range []string{"<think>plan</think>", "**Keep", " going**"} {
			fmt.Fprintf(w, `{"model":"m","response":%q,"done":false}`+"\n", chunk)
		}
		fmt.Fprintln(w, `{"model":"m","response":"","done":true}`)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	p, err := New(context.Background(), Config{
		Provider: "ollama",
		URL:      u,
		Model:    "m",
		Headers:  map[string]string{"X-Token": "secret"},
		Log:      zap.New(core),
	})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	answer, err := p.Generate(context.Background(), "advise me")
	require.NoError(t, err)
	assert.Equal(t, "**Keep going**", answer)
	assert.Equal(t, "advise me", got["prompt"])
	assert.Equal(t, "m", got["model"])

	reasoning := logs.FilterMessage("model reasoning").All()
	require.Len(t, reasoning, 1)
	assert.Equal(t, "plan", reasoning[0].ContextMap()["thoughts"])
}

func TestOllamaUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u, _ := url.Parse(srv.URL)
	srv.Close()

	p, err := New(context.Background(), Config{Provider: "ollama", URL: u, Model: "m"})
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestOpenAIGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req["model"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" Ship it. "},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	p, err := New(context.Background(), Config{Provider: "openai", URL: u, APIKey: "key", Model: "gpt-test"})
	require.NoError(t, err)

	answer, err := p.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Ship it.", answer)
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[]}`)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	p, err := NewOpenAI(Config{URL: u, Model: "gpt-test"})
	require.NoError(t, err)

	answer, err := p.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, NoResponse, answer)
}

func newGeminiServer(t *testing.T, body string) *url.URL {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-Goog-Api-Key"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, fmt.Sprint(req["contents"]), "advise me")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u
}

func TestGeminiGenerate(t *testing.T) {
	u := newGeminiServer(t, `{"candidates":[{"content":{"role":"model","parts":[{"text":" Keep **going** "}]},"finishReason":"STOP"}]}`)

	p, err := New(context.Background(), Config{Provider: "gemini", URL: u, APIKey: "key", Model: "gemini-test"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", p.Name())

	answer, err := p.Generate(context.Background(), "advise me")
	require.NoError(t, err)
	assert.Equal(t, "Keep **going**", answer)
}

func TestGeminiNoCandidates(t *testing.T) {
	u := newGeminiServer(t, `{"candidates":[]}`)

	p, err := NewGemini(context.Background(), Config{URL: u, APIKey: "key", Model: "gemini-test"})
	require.NoError(t, err)

	answer, err := p.Generate(context.Background(), "advise me")
	require.NoError(t, err)
	assert.Equal(t, NoResponse, answer)
}

func TestNewErrors(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Config{Provider: "parrot", Model: "m"})
	assert.ErrorContains(t, err, `unknown provider "parrot"`)

	_, err = New(ctx, Config{Provider: "gemini"})
	assert.ErrorContains(t, err, "api key")

	_, err = New(ctx, Config{Provider: "openai", APIKey: "k"})
	assert.ErrorContains(t, err, "no model")

	_, err = New(ctx, Config{Provider: "ollama", Model: "m"})
	assert.ErrorContains(t, err, "no url")
}
