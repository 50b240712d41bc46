package coach

import (
	"fmt"
	"strings"

	"github.com/spotdemo4/quick-coach/internal/profile"
)

type Mode string

const (
	ModeCareer  Mode = "career"
	ModeStartup Mode = "startup"
)

var Modes = []Mode{ModeCareer, ModeStartup}

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCareer:
		return ModeCareer, nil
	case ModeStartup:
		return ModeStartup, nil
	default:
		return "", fmt.Errorf("unknown coach mode %q", s)
	}
}

// Recommendation is the first advice a coach gives for a profile.
type Recommendation interface {
	Mode() Mode
	// Markdown renders the recommendation in the markup subset.
	Markdown() string
}

type ActionPlan struct {
	Month1 []string `json:"month1"`
	Month2 []string `json:"month2"`
	Month3 []string `json:"month3"`
}

type CareerRecommendation struct {
	JobTitle    string     `json:"jobTitle"`
	Industry    string     `json:"industry"`
	Explanation string     `json:"explanation"`
	KeySkills   []string   `json:"keySkills"`
	ActionPlan  ActionPlan `json:"actionPlan"`
}

func (r CareerRecommendation) Mode() Mode { return ModeCareer }

func (r CareerRecommendation) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** in %s\n\n%s\n\n", r.JobTitle, r.Industry, r.Explanation)

	b.WriteString("**Key Skills to Develop**\n")
	writeList(&b, r.KeySkills)

	b.WriteString("\n**3-Month Action Plan**")
	for i, actions := range [][]string{r.ActionPlan.Month1, r.ActionPlan.Month2, r.ActionPlan.Month3} {
		fmt.Fprintf(&b, "\n*Month %d*\n", i+1)
		writeList(&b, actions)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

type StartupRecommendation struct {
	Idea          string   `json:"idea"`
	ElevatorPitch string   `json:"elevatorPitch"`
	MVPFeatures   []string `json:"mvpFeatures"`
	BusinessModel string   `json:"businessModel"`
	GoToMarket    []string `json:"goToMarket"`
}

func (r StartupRecommendation) Mode() Mode { return ModeStartup }

func (r StartupRecommendation) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n*%s*\n\n", r.Idea, r.ElevatorPitch)

	b.WriteString("**MVP Features**\n")
	writeList(&b, r.MVPFeatures)

	fmt.Fprintf(&b, "\n**Business Model**\n%s\n\n", r.BusinessModel)

	b.WriteString("**Go-to-Market**\n")
	writeList(&b, r.GoToMarket)

	return strings.TrimSuffix(b.String(), "\n")
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// FallbackCareer is offered when no recommendation could be generated.
func FallbackCareer(p profile.UserProfile) CareerRecommendation {
	return CareerRecommendation{
		JobTitle: "Full Stack Developer",
		Industry: "Technology",
		Explanation: fmt.Sprintf("Based on your skills in %s and interests in %s, a career as a Full Stack Developer would be an excellent fit. This role combines technical skills with creative problem-solving.",
			strings.Join(first(p.Skills, 3), ", "), strings.Join(first(p.Interests, 2), ", ")),
		KeySkills: []string{"React", "Node.js", "Database Design", "API Development", "Problem Solving"},
		ActionPlan: ActionPlan{
			Month1: []string{"Build a portfolio website", "Complete React fundamentals course", "Start daily coding practice"},
			Month2: []string{"Learn backend development", "Build 2-3 full-stack projects", "Join developer communities"},
			Month3: []string{"Apply to 10+ positions", "Prepare for technical interviews", "Network with industry professionals"},
		},
	}
}

// FallbackStartup is offered when no recommendation could be generated.
func FallbackStartup(p profile.UserProfile) StartupRecommendation {
	interest := firstOr(p.Interests, "your interests")
	skill := firstOr(p.Skills, "your skills")
	industry := p.Industry
	if industry == "" {
		industry = "your"
	}

	return StartupRecommendation{
		Idea:          fmt.Sprintf("A platform that combines %s with %s to solve real-world problems in the %s industry.", interest, skill, industry),
		ElevatorPitch: fmt.Sprintf("We're revolutionizing %s by leveraging %s to make %s more accessible and efficient.", industry, skill, interest),
		MVPFeatures:   []string{"User registration and profiles", "Core functionality dashboard", "Basic analytics", "Payment integration", "Mobile responsive design"},
		BusinessModel: "Freemium model with subscription tiers - offer basic features for free and charge for premium features, advanced analytics, and enterprise solutions.",
		GoToMarket:    []string{"Build a landing page and collect email signups", "Create content around your niche", "Launch on Product Hunt", "Partner with industry influencers"},
	}
}

func first(values []string, n int) []string {
	if len(values) < n {
		return values
	}
	return values[:n]
}

func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}
