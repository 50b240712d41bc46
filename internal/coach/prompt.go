package coach

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spotdemo4/quick-coach/internal/profile"
)

func careerPrompt(p profile.UserProfile) string {
	return fmt.Sprintf(`As an expert career advisor, analyze this user profile and provide personalized career guidance:

Name: %s
Skills: %s
Interests: %s
Experience Level: %s
Years of Experience: %d
Current Role: %s
Preferred Industry: %s
Goals: %s

Please provide a structured response in JSON format with the following fields:
{
  "jobTitle": "Recommended job title",
  "industry": "Best industry match",
  "explanation": "Detailed explanation of why this career fits their profile",
  "keySkills": ["skill1", "skill2", "skill3", "skill4", "skill5"],
  "actionPlan": {
    "month1": ["action1", "action2", "action3"],
    "month2": ["action1", "action2", "action3"],
    "month3": ["action1", "action2", "action3"]
  }
}

Keep explanations motivational and actionable. Focus on their strengths and growth potential.
Return ONLY the JSON object, no additional text or markdown formatting.`,
		p.Name, strings.Join(p.Skills, ", "), strings.Join(p.Interests, ", "), p.ExperienceLevel,
		p.YearsExperience, p.Role(), p.Industry, p.Goals)
}

func startupPrompt(p profile.UserProfile) string {
	return fmt.Sprintf(`As an expert startup advisor, analyze this user profile and suggest a tailored startup idea:

Name: %s
Skills: %s
Interests: %s
Experience Level: %s
Years of Experience: %d
Preferred Industry: %s

Please provide a structured response in JSON format with the following fields:
{
  "idea": "Startup idea description",
  "elevatorPitch": "One compelling sentence pitch",
  "mvpFeatures": ["feature1", "feature2", "feature3", "feature4", "feature5"],
  "businessModel": "Recommended business model explanation",
  "goToMarket": ["strategy1", "strategy2", "strategy3", "strategy4"]
}

Focus on realistic, actionable startup ideas that leverage their existing skills and interests.
Make the elevator pitch compelling and concise.
Return ONLY the JSON object, no additional text or markdown formatting.`,
		p.Name, strings.Join(p.Skills, ", "), strings.Join(p.Interests, ", "), p.ExperienceLevel,
		p.YearsExperience, p.Industry)
}

func followUpPrompt(question string, previous string, mode Mode) string {
	return fmt.Sprintf(`As an expert %s advisor, answer this follow-up question based on the previous context:

Previous Context: %s
User Question: %s

Provide a helpful, motivational, and actionable response. Keep it conversational and encouraging.
If the question is about implementation steps, provide specific, practical advice.
If it's about concerns or doubts, address them positively while being realistic.

Format your response in plain text with proper markdown formatting for readability:
- Use **bold** for emphasis
- Use bullet points with - for lists
- Use numbered lists when showing steps
- Use line breaks for better readability`, mode, previous, question)
}

var (
	jsonBlockRe = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")
	codeBlockRe = regexp.MustCompile("```\\s*([\\s\\S]*?)\\s*```")
)

// ExtractJSON returns the JSON body of a model answer that may be wrapped in
// a markdown code fence.
func ExtractJSON(text string) string {
	if m := jsonBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	if m := codeBlockRe.FindStringSubmatch(text); m != nil {
		content := strings.TrimSpace(m[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}

	return strings.TrimSpace(text)
}
