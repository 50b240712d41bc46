package profile

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type ExperienceLevel string

const (
	Beginner     ExperienceLevel = "beginner"
	Intermediate ExperienceLevel = "intermediate"
	Advanced     ExperienceLevel = "advanced"
	Expert       ExperienceLevel = "expert"
)

type Goal string

const (
	GoalEmployment       Goal = "employment"
	GoalEntrepreneurship Goal = "entrepreneurship"
	GoalBoth             Goal = "both"
)

var (
	levels = []ExperienceLevel{Beginner, Intermediate, Advanced, Expert}
	goals  = []Goal{GoalEmployment, GoalEntrepreneurship, GoalBoth}
)

type UserProfile struct {
	Name            string          `yaml:"name" json:"name"`
	Skills          []string        `yaml:"skills" json:"skills"`
	Interests       []string        `yaml:"interests" json:"interests"`
	ExperienceLevel ExperienceLevel `yaml:"experience_level" json:"experienceLevel"`
	Goals           Goal            `yaml:"goals" json:"goals"`
	Industry        string          `yaml:"industry" json:"industry"`
	CurrentRole     string          `yaml:"current_role,omitempty" json:"currentRole,omitempty"`
	YearsExperience int             `yaml:"years_experience" json:"yearsExperience"`
}

// Load reads a profile from a YAML file, normalizes and validates it.
func Load(path string) (UserProfile, error) {
	var p UserProfile

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("could not read profile: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("could not parse profile %s: %w", path, err)
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return p, err
	}

	return p, nil
}

// Normalize trims fields and drops empty or repeated skills and interests.
func (p *UserProfile) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Industry = strings.TrimSpace(p.Industry)
	p.CurrentRole = strings.TrimSpace(p.CurrentRole)
	p.ExperienceLevel = ExperienceLevel(strings.ToLower(strings.TrimSpace(string(p.ExperienceLevel))))
	p.Goals = Goal(strings.ToLower(strings.TrimSpace(string(p.Goals))))
	p.Skills = dedupe(p.Skills)
	p.Interests = dedupe(p.Interests)
}

func (p UserProfile) Validate() error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(p.Skills) == 0 {
		errs = append(errs, errors.New("at least one skill is required"))
	}
	if len(p.Interests) == 0 {
		errs = append(errs, errors.New("at least one interest is required"))
	}
	if !slices.Contains(levels, p.ExperienceLevel) {
		errs = append(errs, fmt.Errorf("unknown experience level %q", p.ExperienceLevel))
	}
	if !slices.Contains(goals, p.Goals) {
		errs = append(errs, fmt.Errorf("unknown goal %q", p.Goals))
	}
	if p.YearsExperience < 0 {
		errs = append(errs, errors.New("years of experience cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid profile: %w", errors.Join(errs...))
	}
	return nil
}

func (p UserProfile) Role() string {
	if p.CurrentRole == "" {
		return "Not specified"
	}
	return p.CurrentRole
}

func dedupe(values []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, v)
	}

	return out
}
