package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spotdemo4/quick-coach/internal/chat"
	"github.com/spotdemo4/quick-coach/internal/markup"
	"github.com/spotdemo4/quick-coach/internal/profile"
)

type fakeProvider struct {
	answer  string
	err     error
	prompts []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

type fakeTracker struct {
	events []string
}

func (f *fakeTracker) Track(_ context.Context, name string, _ map[string]any) error {
	f.events = append(f.events, name)
	return nil
}

var ada = profile.UserProfile{
	Name:            "Ada",
	Skills:          []string{"Go", "SQL", "Kubernetes", "Rust"},
	Interests:       []string{"climate", "energy", "travel"},
	ExperienceLevel: profile.Advanced,
	Goals:           profile.GoalBoth,
	Industry:        "Energy",
	YearsExperience: 7,
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "Sure!\n```json\n{\"a\":1}\n```\nbye", `{"a":1}`},
		{"generic fence with object", "```\n[1,2]\n```", "[1,2]"},
		{"generic fence without json", "```\nhello\n```", "```\nhello\n```"},
		{"bare", "  {\"a\":1}\n", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestCareerRecommendation(t *testing.T) {
	p := &fakeProvider{answer: "```json\n" + `{
		"jobTitle": "Energy Data Engineer",
		"industry": "Energy",
		"explanation": "You like data and the grid.",
		"keySkills": ["Go", "Forecasting"],
		"actionPlan": {"month1": ["a"], "month2": ["b"], "month3": ["c"]}
	}` + "\n```"}
	tracker := &fakeTracker{}
	s := New(p, zap.NewNop(), WithTracker(tracker))

	rec := s.CareerRecommendation(context.Background(), ada)

	assert.Equal(t, "Energy Data Engineer", rec.JobTitle)
	assert.Equal(t, []string{"c"}, rec.ActionPlan.Month3)
	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "Skills: Go, SQL, Kubernetes, Rust")
	assert.Contains(t, p.prompts[0], "Current Role: Not specified")
	assert.Equal(t, []string{"recommendation_generated"}, tracker.events)
}

func TestRecommendationFallsBack(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	tracker := &fakeTracker{}

	for _, p := range []*fakeProvider{
		{err: errors.New("boom")},
		{answer: "not json at all"},
		{answer: `{"jobTitle": ""}`},
	} {
		s := New(p, zap.New(core), WithTracker(tracker))

		rec := s.CareerRecommendation(context.Background(), ada)
		assert.Equal(t, FallbackCareer(ada), rec)
		assert.Contains(t, rec.Explanation, "Go, SQL, Kubernetes")
		assert.Contains(t, rec.Explanation, "climate, energy")
	}

	assert.Equal(t, 3, logs.FilterMessage("using fallback recommendation").Len())
	assert.Equal(t, []string{"recommendation_fallback", "recommendation_fallback", "recommendation_fallback"}, tracker.events)
}

func TestStartupRecommendation(t *testing.T) {
	p := &fakeProvider{answer: `{"idea":"Grid Buddy","elevatorPitch":"Power to the people.","mvpFeatures":["x"],"businessModel":"SaaS","goToMarket":["y"]}`}
	s := New(p, nil)

	rec := s.Recommend(context.Background(), ModeStartup, ada)

	require.IsType(t, StartupRecommendation{}, rec)
	assert.Equal(t, "Grid Buddy", rec.(StartupRecommendation).Idea)
	assert.Equal(t, ModeStartup, rec.Mode())
}

func TestStartupFallback(t *testing.T) {
	s := New(&fakeProvider{err: errors.New("down")}, nil)

	rec := s.StartupRecommendation(context.Background(), ada)

	assert.Equal(t, "A platform that combines climate with Go to solve real-world problems in the Energy industry.", rec.Idea)
	assert.Len(t, rec.MVPFeatures, 5)
}

func TestFollowUp(t *testing.T) {
	p := &fakeProvider{answer: "**Yes.** Start today."}
	s := New(p, nil)

	answer, err := s.FollowUp(context.Background(), "  should I apply?  ", "Career recommendation: {}", ModeCareer)
	require.NoError(t, err)
	assert.Equal(t, "**Yes.** Start today.", answer)
	assert.Contains(t, p.prompts[0], "As an expert career advisor")
	assert.Contains(t, p.prompts[0], "User Question: should I apply?")
	assert.Contains(t, p.prompts[0], "Previous Context: Career recommendation: {}")
}

func TestFollowUpFailure(t *testing.T) {
	s := New(&fakeProvider{err: errors.New("timeout")}, nil)

	answer, err := s.FollowUp(context.Background(), "why?", "", ModeStartup)
	assert.Error(t, err)
	assert.Equal(t, chat.Apology, answer)

	_, err = s.FollowUp(context.Background(), "   ", "", ModeStartup)
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.Equal(t, "No specific recommendation yet", Context(nil))

	c := Context(CareerRecommendation{JobTitle: "Chef"})
	assert.True(t, strings.HasPrefix(c, "Career recommendation: {"))
	assert.Contains(t, c, `"jobTitle":"Chef"`)

	assert.True(t, strings.HasPrefix(Context(StartupRecommendation{Idea: "x"}), "Startup recommendation: "))
}

func TestMarkdownRendersThroughFormatter(t *testing.T) {
	got := markup.Plain(markup.Parse(FallbackCareer(ada).Markdown()))

	assert.True(t, strings.HasPrefix(got, "Full Stack Developer in Technology\n"))
	assert.Contains(t, got, "Key Skills to Develop\n• React\n")
	assert.Contains(t, got, "Month 3\n• Apply to 10+ positions")
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Startup ")
	require.NoError(t, err)
	assert.Equal(t, ModeStartup, m)

	_, err = ParseMode("astronaut")
	assert.Error(t, err)
}
