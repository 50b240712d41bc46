package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

type Ollama struct {
	ollama *api.Client

	model   string
	options map[string]any
	log     *zap.Logger
}

func NewOllama(ctx context.Context, c Config) (*Ollama, error) {
	if c.URL == nil {
		return nil, fmt.Errorf("no url set for ollama")
	}
	if c.Model == "" {
		return nil, errors.New("'QC_MODEL' not set")
	}

	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}

	// Create ollama
	ollama := api.NewClient(c.URL, httpClient(c))
	err := ollama.Heartbeat(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not reach ollama at %s: %w", c.URL, err)
	}

	return &Ollama{
		ollama:  ollama,
		model:   c.Model,
		options: c.Options,
		log:     log,
	}, nil
}

func (o *Ollama) Name() string {
	return "ollama"
}

// Generate collects the streamed response and drops any leading reasoning
// block such as <think>...</think>.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	f := thoughtFilter{}

	err := o.ollama.Generate(ctx, &api.GenerateRequest{
		Model:   o.model,
		Options: o.options,

		Prompt: prompt,
	},
		func(gr api.GenerateResponse) error {
			f.Write(gr.Response)
			return nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	// Check if context was cancelled
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if thoughts := strings.TrimSpace(f.Thoughts()); thoughts != "" && !f.thinking {
		o.log.Debug("model reasoning", zap.String("model", o.model), zap.String("thoughts", thoughts))
	}

	response := strings.TrimSpace(f.Response())
	if response == "" {
		return NoResponse, nil
	}

	return response, nil
}

var startTag = regexp.MustCompile("<([a-zA-Z_]+)>")

// thoughtFilter splits streamed chunks into reasoning and response. A
// response that opens with a tag is treated as reasoning until the matching
// closing tag.
type thoughtFilter struct {
	thoughts string
	response string
	thinking bool
	done     bool
	endTag   *regexp.Regexp
}

func (f *thoughtFilter) Write(chunk string) {
	switch {
	case f.thinking:
		f.thoughts += chunk

	case !f.done && strings.HasPrefix(strings.TrimSpace(f.response+chunk), "<"):
		f.thinking = true
		f.thoughts = f.response + chunk
		f.response = ""

	default:
		// This is a response
		f.response += chunk
		return
	}

	// Start of thought
	if f.endTag == nil {
		tag := startTag.FindStringSubmatch(f.thoughts)
		if len(tag) < 2 {
			return
		}
		f.endTag = regexp.MustCompile(fmt.Sprintf("</%s>", regexp.QuoteMeta(tag[1])))
	}

	// End of thought
	if loc := f.endTag.FindStringIndex(f.thoughts); loc != nil {
		f.response = f.thoughts[loc[1]:]
		f.thoughts = f.thoughts[:loc[0]]
		f.thinking = false
		f.done = true
	}
}

// Thoughts returns the reasoning with its opening tag removed.
func (f *thoughtFilter) Thoughts() string {
	if loc := startTag.FindStringIndex(f.thoughts); loc != nil {
		return f.thoughts[loc[1]:]
	}
	return f.thoughts
}

// Response returns the text after any reasoning. If a reasoning block never
// closed, everything received is returned.
func (f *thoughtFilter) Response() string {
	if f.thinking {
		return f.thoughts
	}
	return f.response
}
