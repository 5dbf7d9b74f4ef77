package prompts

import (
	"fmt"
	"strings"

	"github.com/scholarmatch/scholarmatch-engine/pkg/llm"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

// RankingSystemMessage instructs the model to act as a selection-committee
// reviewer and reply with nothing but a JSON array.
const RankingSystemMessage = `You are a scholarship selection assistant helping a sponsor review applicants.
You score each application against the scholarship's criteria and respond ONLY with a JSON array.
Do not include any text outside the JSON array.`

// BuildRankingPrompt renders a scholarship's criteria and its applications
// into the ranking request.
func BuildRankingPrompt(applications []*models.Application, scholarship *models.Scholarship) string {
	var b strings.Builder

	b.WriteString("# Applicant Ranking Request\n\n")
	b.WriteString("## Scholarship Criteria\n\n")
	fmt.Fprintf(&b, "- Name: %s\n", scholarship.Name)
	fmt.Fprintf(&b, "- Type: %s\n", scholarship.Type)
	fmt.Fprintf(&b, "- Minimum GPA: %.2f\n", scholarship.MinGPA)
	fmt.Fprintf(&b, "- Eligible Courses: %s\n", listOrAll(scholarship.EligibleCourses))
	if len(scholarship.RequiredSkills) > 0 {
		fmt.Fprintf(&b, "- Required Skills: %s\n", strings.Join(scholarship.RequiredSkills, ", "))
	}
	fmt.Fprintf(&b, "- Total Slots: %d\n", scholarship.TotalSlots)

	b.WriteString("\n## Applications\n\n")
	for _, a := range applications {
		fmt.Fprintf(&b, "### %s (id: %s)\n", a.StudentName, a.ID)
		fmt.Fprintf(&b, "- Course: %s, Year Level: %s\n", a.Course, a.YearLevel)
		fmt.Fprintf(&b, "- GPA: %.2f\n", a.GPA)
		fmt.Fprintf(&b, "- Family Income Range: %s\n", a.IncomeRange)
		fmt.Fprintf(&b, "- Skills: %s\n", a.Skills)
		if a.Essay != "" {
			fmt.Fprintf(&b, "- Essay: %s\n", a.Essay)
		}
		b.WriteString("\n")
	}

	b.WriteString(`## Response Format

Return a JSON array with EXACTLY one object per application listed above,
scored on academics, financial need, skills fit, and essay quality. All
scores are numbers from 0 to 100; rank 1 is the strongest applicant and
"eligible" means the GPA meets the minimum. Every object must have this
shape:

`)
	b.WriteString(rankingResponseShape)
	b.WriteString(`

Do not omit any application. Do not add fields.`)

	return b.String()
}

// rankingResponseShape is the example object the model is told to mirror,
// rendered once from the same shape the contract parser accepts.
var rankingResponseShape = llm.MustMarshal([]map[string]any{{
	"applicationId": "<id exactly as given>",
	"studentName":   "<name>",
	"rankScore":     76.0,
	"rank":          1,
	"eligible":      true,
	"scoreBreakdown": map[string]float64{
		"academic":      80,
		"financialNeed": 75,
		"skills":        50,
		"essay":         50,
		"overallFit":    76,
	},
	"strengths":      []string{"<short phrase>"},
	"weaknesses":     []string{"<short phrase>"},
	"recommendation": "<one sentence for the sponsor>",
}})
