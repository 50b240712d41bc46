// Package coach builds career and startup advice on top of a text
// generation provider.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spotdemo4/quick-coach/internal/chat"
	"github.com/spotdemo4/quick-coach/internal/llm"
	"github.com/spotdemo4/quick-coach/internal/profile"
)

// Tracker records analytics events.
type Tracker interface {
	Track(ctx context.Context, name string, props map[string]any) error
}

type Service struct {
	llm     llm.Provider
	log     *zap.Logger
	tracker Tracker
}

type Option func(*Service)

func WithTracker(t Tracker) Option {
	return func(s *Service) {
		s.tracker = t
	}
}

func New(provider llm.Provider, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		llm: provider,
		log: log,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Recommend generates a recommendation for mode. It always returns advice;
// if the provider fails the profile-based fallback is used.
func (s *Service) Recommend(ctx context.Context, mode Mode, p profile.UserProfile) Recommendation {
	switch mode {
	case ModeStartup:
		return s.StartupRecommendation(ctx, p)
	default:
		return s.CareerRecommendation(ctx, p)
	}
}

func (s *Service) CareerRecommendation(ctx context.Context, p profile.UserProfile) CareerRecommendation {
	var rec CareerRecommendation
	err := s.generateJSON(ctx, careerPrompt(p), &rec)
	if err == nil && rec.JobTitle == "" {
		err = errors.New("recommendation has no job title")
	}
	if err != nil {
		s.fallback(ctx, ModeCareer, err)
		return FallbackCareer(p)
	}

	s.track(ctx, "recommendation_generated", map[string]any{"mode": ModeCareer, "provider": s.llm.Name()})
	return rec
}

func (s *Service) StartupRecommendation(ctx context.Context, p profile.UserProfile) StartupRecommendation {
	var rec StartupRecommendation
	err := s.generateJSON(ctx, startupPrompt(p), &rec)
	if err == nil && rec.Idea == "" {
		err = errors.New("recommendation has no idea")
	}
	if err != nil {
		s.fallback(ctx, ModeStartup, err)
		return FallbackStartup(p)
	}

	s.track(ctx, "recommendation_generated", map[string]any{"mode": ModeStartup, "provider": s.llm.Name()})
	return rec
}

// FollowUp answers a question about an earlier recommendation. On failure
// it returns the apology text along with the error.
func (s *Service) FollowUp(ctx context.Context, question string, previous string, mode Mode) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("empty question")
	}

	s.track(ctx, "followup_asked", map[string]any{"mode": mode, "length": len(question)})

	answer, err := s.llm.Generate(ctx, followUpPrompt(question, previous, mode))
	if err != nil {
		s.log.Warn("follow-up failed", zap.String("mode", string(mode)), zap.Error(err))
		return chat.Apology, fmt.Errorf("follow-up: %w", err)
	}

	s.log.Debug("follow-up answered", zap.String("mode", string(mode)), zap.Int("length", len(answer)))
	return answer, nil
}

// Context describes rec for a follow-up prompt.
func Context(rec Recommendation) string {
	if rec == nil {
		return "No specific recommendation yet"
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "No specific recommendation yet"
	}

	switch rec.Mode() {
	case ModeStartup:
		return "Startup recommendation: " + string(data)
	default:
		return "Career recommendation: " + string(data)
	}
}

func (s *Service) generateJSON(ctx context.Context, prompt string, v any) error {
	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	body := ExtractJSON(answer)
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("could not decode recommendation: %w", err)
	}

	return nil
}

func (s *Service) fallback(ctx context.Context, mode Mode, err error) {
	s.log.Warn("using fallback recommendation", zap.String("mode", string(mode)), zap.Error(err))
	s.track(ctx, "recommendation_fallback", map[string]any{"mode": mode, "error": err.Error()})
}

func (s *Service) track(ctx context.Context, name string, props map[string]any) {
	if s.tracker == nil {
		return
	}

	if err := s.tracker.Track(ctx, name, props); err != nil {
		s.log.Debug("could not track event", zap.String("event", name), zap.Error(err))
	}
}
