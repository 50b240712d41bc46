package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spotdemo4/quick-coach/internal/chat"
	"github.com/spotdemo4/quick-coach/internal/coach"
	"github.com/spotdemo4/quick-coach/internal/profile"
	"github.com/spotdemo4/quick-coach/internal/store"
	"github.com/spotdemo4/quick-coach/internal/tui"
)

type scriptedProvider struct {
	generate func(prompt string) (string, error)
}

func (p scriptedProvider) Name() string { return "scripted" }

func (p scriptedProvider) Generate(_ context.Context, prompt string) (string, error) {
	return p.generate(prompt)
}

const careerJSON = "```json\n" + `{
  "jobTitle": "Data Engineer",
  "industry": "Fintech",
  "explanation": "You like SQL.",
  "keySkills": ["dbt"],
  "actionPlan": {"month1": ["learn dbt"], "month2": [], "month3": []}
}` + "\n```"

func startWorker(t *testing.T, provider scriptedProvider) (*store.Store, chan<- string, <-chan tui.Msg, func() error) {
	t.Helper()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	log := zaptest.NewLogger(t)
	w := worker{
		coach:   coach.New(provider, log, coach.WithTracker(s)),
		store:   s,
		profile: profile.UserProfile{Name: "Ada", Skills: []string{"sql"}, Interests: []string{"data"}},
		log:     log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	requests := make(chan string)
	output := make(chan tui.Msg)
	done := make(chan error, 1)
	go func() {
		done <- w.run(ctx, requests, output)
	}()

	stop := func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
			return nil
		}
	}
	t.Cleanup(func() { cancel() })

	return s, requests, output, stop
}

func receive(t *testing.T, output <-chan tui.Msg) tui.Msg {
	t.Helper()

	select {
	case msg := <-output:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message from worker")
		return tui.Msg{}
	}
}

func TestWorkerSession(t *testing.T) {
	provider := scriptedProvider{generate: func(prompt string) (string, error) {
		if strings.Contains(prompt, "User Question: ") {
			return "Start with **dbt**.", nil
		}
		return careerJSON, nil
	}}
	s, requests, output, stop := startWorker(t, provider)

	requests <- "career"
	assert.Equal(t, tui.MsgLoading, receive(t, output).Type)

	rec := receive(t, output)
	assert.Equal(t, tui.MsgRecommendation, rec.Type)
	assert.Contains(t, rec.Text, "Data Engineer")

	requests <- "where do I start?"
	assert.Equal(t, tui.MsgLoading, receive(t, output).Type)

	answer := receive(t, output)
	assert.Equal(t, tui.MsgAnswer, answer.Type)
	assert.Equal(t, "Start with **dbt**.", answer.Text)

	require.NoError(t, stop())

	ctx := context.Background()
	sessions, err := s.Sessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "career", sessions[0].Mode)
	assert.Equal(t, 2, sessions[0].Messages)

	history, err := s.History(ctx, sessions[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, chat.RoleUser, history[0].Role)
	assert.Equal(t, "where do I start?", history[0].Content)
	assert.Equal(t, chat.RoleAssistant, history[1].Role)
	assert.Equal(t, "Start with **dbt**.", history[1].Content)

	var saved coach.CareerRecommendation
	require.NoError(t, s.LatestRecommendation(ctx, "career", &saved))
	assert.Equal(t, "Data Engineer", saved.JobTitle)
}

func TestWorkerApologizes(t *testing.T) {
	provider := scriptedProvider{generate: func(string) (string, error) {
		return "", errors.New("offline")
	}}
	s, requests, output, stop := startWorker(t, provider)

	requests <- "startup"
	receive(t, output)

	// Falls back to the built-in idea
	rec := receive(t, output)
	assert.Equal(t, tui.MsgRecommendation, rec.Type)
	assert.NotEmpty(t, rec.Text)

	requests <- "how do I launch?"
	receive(t, output)

	answer := receive(t, output)
	assert.Equal(t, tui.MsgError, answer.Type)
	assert.Equal(t, chat.Apology, answer.Text)

	require.NoError(t, stop())

	events, err := s.Events(context.Background(), "recommendation_fallback", 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestWorkerUnknownMode(t *testing.T) {
	_, requests, _, stop := startWorker(t, scriptedProvider{generate: func(string) (string, error) {
		return "", nil
	}})

	requests <- "astronaut"

	// run returns on its own, so stop only collects the error
	assert.Error(t, stop())
}
