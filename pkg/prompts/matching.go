// Package prompts builds the message pairs sent to the matching model.
package prompts

import (
	"fmt"
	"strings"

	"github.com/scholarmatch/scholarmatch-engine/pkg/llm"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

// MatchingSystemMessage instructs the model to act as a scholarship advisor
// and reply with nothing but a JSON array.
const MatchingSystemMessage = `You are a scholarship matching assistant for a university financial aid office.
You evaluate how well a student fits each scholarship's criteria and respond ONLY with a JSON array.
Do not include any text outside the JSON array.`

// BuildMatchingPrompt renders a student profile and candidate scholarships
// into the matching request. The response format section pins down the exact
// fields the contract parser expects, including one entry per scholarship.
func BuildMatchingPrompt(profile *models.StudentProfile, scholarships []*models.Scholarship) string {
	var b strings.Builder

	b.WriteString("# Scholarship Matching Request\n\n")
	b.WriteString("## Student Profile\n\n")
	fmt.Fprintf(&b, "- Course: %s\n", profile.Course)
	fmt.Fprintf(&b, "- Year Level: %s\n", profile.YearLevel)
	fmt.Fprintf(&b, "- GPA: %.2f (scale 0.0-4.0)\n", profile.GPA)
	fmt.Fprintf(&b, "- Family Income Range: %s\n", profile.IncomeRange)
	fmt.Fprintf(&b, "- Skills: %s\n", profile.Skills)
	fmt.Fprintf(&b, "- Extracurriculars: %s\n", profile.Extracurriculars)
	fmt.Fprintf(&b, "- Preferred Scholarship Type: %s\n", profile.PreferredType)
	if profile.Essay != "" {
		fmt.Fprintf(&b, "\n### Essay\n\n%s\n", profile.Essay)
	}

	b.WriteString("\n## Scholarships\n\n")
	for _, s := range scholarships {
		fmt.Fprintf(&b, "### %s (id: %s)\n", s.Name, s.ID)
		fmt.Fprintf(&b, "- Organization: %s\n", s.Organization)
		fmt.Fprintf(&b, "- Type: %s\n", s.Type)
		fmt.Fprintf(&b, "- Minimum GPA: %.2f\n", s.MinGPA)
		fmt.Fprintf(&b, "- Eligible Courses: %s\n", listOrAll(s.EligibleCourses))
		fmt.Fprintf(&b, "- Eligible Year Levels: %s\n", listOrAll(s.EligibleYearLevels))
		if s.IncomeCeiling != nil {
			fmt.Fprintf(&b, "- Income Ceiling: %.0f\n", *s.IncomeCeiling)
		}
		if len(s.RequiredSkills) > 0 {
			fmt.Fprintf(&b, "- Required Skills: %s\n", strings.Join(s.RequiredSkills, ", "))
		}
		fmt.Fprintf(&b, "- Slots Remaining: %d\n\n", s.SlotsRemaining())
	}

	b.WriteString(`## Response Format

Return a JSON array with EXACTLY one object per scholarship listed above.
All scores are numbers from 0 to 100. Every object must have this shape:

`)
	b.WriteString(matchingResponseShape)
	b.WriteString(`

"recommendation" is one of: Highly Recommended, Recommended, Consider,
Not Recommended. Do not omit any scholarship. Do not add fields.`)

	return b.String()
}

// matchingResponseShape is the example object the model is told to mirror,
// rendered once from the same shape the contract parser accepts.
var matchingResponseShape = llm.MustMarshal([]map[string]any{{
	"scholarshipId":   "<id exactly as given>",
	"scholarshipName": "<name>",
	"matchScore":      87.5,
	"eligible":        true,
	"matchDetails": map[string]bool{
		"gpaMatch":       true,
		"courseMatch":    true,
		"yearLevelMatch": true,
		"incomeMatch":    false,
		"skillsMatch":    true,
	},
	"explanation":    "<2-3 sentences explaining the score>",
	"recommendation": "Highly Recommended",
}})

func listOrAll(items []string) string {
	if len(items) == 0 {
		return "All"
	}
	return strings.Join(items, ", ")
}
