package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJudgeFeedback(t *testing.T) {
	feedback, err := parseJudgeFeedback(`{
		"criteria": [
			{"criterion": "Data source adherence", "passed": true, "judgement": "Only SEC filings cited.", "score": 1.0},
			{"criterion": "Citation quality", "passed": false, "judgement": "No filing dates given.", "score": 0.4}
		],
		"overall_score": 0.7,
		"summary": "Solid sourcing, weak citations.",
		"strengths": ["stays within filings"],
		"weaknesses": ["missing filing dates"]
	}`)
	require.NoError(t, err)

	require.Len(t, feedback.Criteria, 2)
	assert.True(t, feedback.Criteria[0].Passed)
	assert.False(t, feedback.Criteria[1].Passed)
	require.NotNil(t, feedback.Criteria[1].Score)
	assert.Equal(t, 0.4, *feedback.Criteria[1].Score)
	assert.Equal(t, 0.7, feedback.OverallScore)
	assert.Equal(t, []string{"stays within filings"}, feedback.Strengths)
}

func TestParseJudgeFeedbackStripsCodeFences(t *testing.T) {
	feedback, err := parseJudgeFeedback("```json\n" +
		`{"criteria": [{"criterion": "Completeness", "passed": true, "judgement": "ok"}], "overall_score": 1, "summary": "fine"}` +
		"\n```")
	require.NoError(t, err)
	require.Len(t, feedback.Criteria, 1)
	assert.Equal(t, "Completeness", feedback.Criteria[0].Criterion)
}

func TestParseJudgeFeedbackRejectsBadReplies(t *testing.T) {
	_, err := parseJudgeFeedback("I cannot evaluate this answer.")
	assert.Error(t, err)

	_, err = parseJudgeFeedback(`{"criteria": [], "overall_score": 0, "summary": "empty"}`)
	assert.Error(t, err)
}

func TestJudgeFeedbackChecks(t *testing.T) {
	score := 0.5
	feedback := &JudgeFeedback{
		Criteria: []JudgeCriterion{
			{Criterion: "Data source adherence", Passed: true, Judgement: "filings only"},
			{Criterion: "Entity resolution", Passed: false, Judgement: "wrong company", Score: &score},
		},
		OverallScore: 0.6,
		Summary:      "mixed",
	}

	checks := feedback.Checks(7)
	require.Len(t, checks, 3)

	assert.Equal(t, uint(7), checks[0].LogID)
	assert.Equal(t, "judge_data_source_adherence", checks[0].CheckName)
	require.NotNil(t, checks[0].Passed)
	assert.True(t, *checks[0].Passed)

	assert.Equal(t, "judge_entity_resolution", checks[1].CheckName)
	require.NotNil(t, checks[1].Passed)
	assert.False(t, *checks[1].Passed)
	assert.Contains(t, checks[1].Message, "score 0.50")

	assert.Equal(t, "judge_overall", checks[2].CheckName)
	assert.Nil(t, checks[2].Passed)
	assert.Contains(t, checks[2].Message, "0.60")
	assert.Contains(t, checks[2].Message, "mixed")
}

func TestCriterionSlug(t *testing.T) {
	assert.Equal(t, "citation_quality", criterionSlug("Citation quality"))
	assert.Equal(t, "missing_document_handling", criterionSlug("  Missing document handling.  "))
	assert.Equal(t, "entity_resolution_company_match", criterionSlug("Entity resolution (company match)"))
}
