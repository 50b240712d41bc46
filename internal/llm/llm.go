// Package llm generates one-shot text completions from a hosted or local
// model.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Minute

// NoResponse is returned as the answer when a provider produced no text.
const NoResponse = "No response generated"

type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	Provider string
	URL      *url.URL
	Model    string
	APIKey   string
	Headers  map[string]string
	Options  map[string]any
	Timeout  time.Duration

	// Log receives debug output such as model reasoning. Nil discards it.
	Log *zap.Logger
}

// New creates the provider named by c.Provider.
func New(ctx context.Context, c Config) (Provider, error) {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Log == nil {
		c.Log = zap.NewNop()
	}

	var (
		p   Provider
		err error
	)
	switch strings.ToLower(c.Provider) {
	case "", "ollama":
		p, err = NewOllama(ctx, c)
	case "gemini":
		p, err = NewGemini(ctx, c)
	case "openai":
		p, err = NewOpenAI(c)
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}

func httpClient(c Config) *http.Client {
	return &http.Client{
		Timeout: c.Timeout,
		Transport: AuthMiddleware{
			Headers: c.Headers,
			Proxied: http.DefaultTransport,
		},
	}
}

// AuthMiddleware adds fixed headers to every request.
type AuthMiddleware struct {
	Headers map[string]string
	Proxied http.RoundTripper
}

func (am AuthMiddleware) RoundTrip(req *http.Request) (res *http.Response, e error) {
	if len(am.Headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range am.Headers {
			req.Header.Add(k, v)
		}
	}

	return am.Proxied.RoundTrip(req)
}
