package services

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/scholarmatch/scholarmatch-engine/pkg/jsonutil"
	"github.com/scholarmatch/scholarmatch-engine/pkg/llm"
	"github.com/scholarmatch/scholarmatch-engine/pkg/models"
)

// Wire shapes of the model's reply. IDs arrive as strings, numbers may
// arrive quoted, and name fields occasionally come back as bare numbers, so
// fields are validated and coerced before anything is accepted. A reply
// that omits an input record, references an unknown one,
// or fails to parse as a JSON array is a contract violation and the caller
// falls back wholesale; there is no partial acceptance.

type matchResultPayload struct {
	ScholarshipID   string              `json:"scholarshipId"`
	ScholarshipName json.RawMessage     `json:"scholarshipName"`
	MatchScore      json.RawMessage     `json:"matchScore"`
	Eligible        bool                `json:"eligible"`
	MatchDetails    models.MatchDetails `json:"matchDetails"`
	Explanation     string              `json:"explanation"`
	Recommendation  json.RawMessage     `json:"recommendation"`
}

type rankResultPayload struct {
	ApplicationID  string          `json:"applicationId"`
	StudentName    json.RawMessage `json:"studentName"`
	RankScore      json.RawMessage `json:"rankScore"`
	Rank           int             `json:"rank"`
	Eligible       bool            `json:"eligible"`
	ScoreBreakdown struct {
		Academic      json.RawMessage `json:"academic"`
		FinancialNeed json.RawMessage `json:"financialNeed"`
		Skills        json.RawMessage `json:"skills"`
		Essay         json.RawMessage `json:"essay"`
		OverallFit    json.RawMessage `json:"overallFit"`
	} `json:"scoreBreakdown"`
	Strengths      []string        `json:"strengths"`
	Weaknesses     []string        `json:"weaknesses"`
	Recommendation json.RawMessage `json:"recommendation"`
}

// parseMatchResponse validates model output against the supplied
// scholarship set. Exactly one result per input scholarship must come back.
func parseMatchResponse(content string, scholarships []*models.Scholarship) ([]models.MatchResult, error) {
	payload, err := llm.ParseArray[matchResultPayload](content)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Scholarship, len(scholarships))
	for _, s := range scholarships {
		byID[s.ID] = s
	}

	results := make([]models.MatchResult, 0, len(scholarships))
	seen := make(map[uuid.UUID]bool, len(scholarships))

	for _, item := range payload {
		id, err := uuid.Parse(item.ScholarshipID)
		if err != nil {
			return nil, llm.NewError(llm.KindContract,
				fmt.Sprintf("invalid scholarship id %q in response", item.ScholarshipID), err)
		}
		s, ok := byID[id]
		if !ok {
			return nil, llm.NewError(llm.KindContract,
				fmt.Sprintf("response references unknown scholarship %s", id), nil)
		}
		if seen[id] {
			return nil, llm.NewError(llm.KindContract,
				fmt.Sprintf("response contains scholarship %s twice", id), nil)
		}
		seen[id] = true

		name := jsonutil.FlexibleString(item.ScholarshipName)
		if name == "" {
			name = s.Name
		}
		score := clampScore(jsonutil.FlexibleFloat(item.MatchScore))
		recommendation := jsonutil.FlexibleString(item.Recommendation)
		if recommendation == "" {
			recommendation = models.RecommendationTier(score)
		}

		results = append(results, models.MatchResult{
			ScholarshipID:   id,
			ScholarshipName: name,
			MatchScore:      score,
			Eligible:        item.Eligible,
			MatchDetails:    item.MatchDetails,
			Explanation:     item.Explanation,
			Recommendation:  recommendation,
		})
	}

	if len(results) != len(scholarships) {
		return nil, llm.NewError(llm.KindContract,
			fmt.Sprintf("response covered %d of %d scholarships", len(results), len(scholarships)), nil)
	}

	return results, nil
}

// parseRankResponse validates model output against the supplied application
// set and renormalizes rank positions: the model's own rank field is not
// trusted. Results are re-sorted by descending score and assigned dense
// 1-based ranks with ties kept in response order.
func parseRankResponse(content string, applications []*models.Application) ([]models.RankResult, error) {
	payload, err := llm.ParseArray[rankResultPayload](content)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Application, len(applications))
	for _, a := range applications {
		byID[a.ID] = a
	}

	results := make([]models.RankResult, 0, len(applications))
	seen := make(map[uuid.UUID]bool, len(applications))

	for _, item := range payload {
		id, err := uuid.Parse(item.ApplicationID)
		if err != nil {
			return nil, llm.NewError(llm.KindContract,
				fmt.Sprintf("invalid application id %q in response", item.ApplicationID), err)
		}
		app, ok := byID[id]
		if !ok {
			return nil, llm.NewError(llm.KindContract,
				fmt.Sprintf("response references unknown application %s", id), nil)
		}
		if seen[id] {
			return nil, llm.NewError(llm.KindContract,
				fmt.Sprintf("response contains application %s twice", id), nil)
		}
		seen[id] = true

		name := jsonutil.FlexibleString(item.StudentName)
		if name == "" {
			name = app.StudentName
		}
		score := clampScore(jsonutil.FlexibleFloat(item.RankScore))

		strengths := item.Strengths
		if strengths == nil {
			strengths = []string{}
		}
		weaknesses := item.Weaknesses
		if weaknesses == nil {
			weaknesses = []string{}
		}

		results = append(results, models.RankResult{
			ApplicationID: id,
			StudentName:   name,
			RankScore:     score,
			Eligible:      item.Eligible,
			ScoreBreakdown: models.ScoreBreakdown{
				Academic:      clampScore(jsonutil.FlexibleFloat(item.ScoreBreakdown.Academic)),
				FinancialNeed: clampScore(jsonutil.FlexibleFloat(item.ScoreBreakdown.FinancialNeed)),
				Skills:        clampScore(jsonutil.FlexibleFloat(item.ScoreBreakdown.Skills)),
				Essay:         clampScore(jsonutil.FlexibleFloat(item.ScoreBreakdown.Essay)),
				OverallFit:    clampScore(jsonutil.FlexibleFloat(item.ScoreBreakdown.OverallFit)),
			},
			Strengths:      strengths,
			Weaknesses:     weaknesses,
			Recommendation: jsonutil.FlexibleString(item.Recommendation),
		})
	}

	if len(results) != len(applications) {
		return nil, llm.NewError(llm.KindContract,
			fmt.Sprintf("response covered %d of %d applications", len(results), len(applications)), nil)
	}

	normalizeRanks(results)
	return results, nil
}

// normalizeRanks sorts by descending rank score and reassigns dense 1-based
// positions.
func normalizeRanks(results []models.RankResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RankScore > results[j].RankScore
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}
