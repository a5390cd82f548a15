package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"secwatch/models"
)

const judgeInstructions = `You are an expert judge evaluating the performance of an agent that reports on cybersecurity disclosures in SEC filings. The agent must only use information from SEC filings and must clearly identify when information is missing.

Evaluate the agent's answer against these criteria:
1. Data source adherence: the answer uses only SEC filings, never general knowledge, and says so when filings do not cover the question.
2. Citation quality: every claim cites a form type (8-K, 10-K, 10-Q) and filing date.
3. Information accuracy: company names, CIKs, dates, and subsidiary-to-parent mappings are correct.
4. Completeness: the answer addresses every aspect of the question.
5. Missing document handling: gaps are identified and explained.
6. Response structure: the answer is organized into clear sections.
7. Entity resolution: the company in the answer matches the company in the question.`

// JudgeCriterion is one criterion's verdict from the judge.
type JudgeCriterion struct {
	Criterion string   `json:"criterion"`
	Passed    bool     `json:"passed"`
	Judgement string   `json:"judgement"`
	Score     *float64 `json:"score,omitempty"`
}

// JudgeFeedback is the judge's complete assessment of an answer.
type JudgeFeedback struct {
	Criteria     []JudgeCriterion `json:"criteria"`
	OverallScore float64          `json:"overall_score"`
	Summary      string           `json:"summary"`
	Strengths    []string         `json:"strengths"`
	Weaknesses   []string         `json:"weaknesses"`
}

// JudgeEvaluator grades logged answers with an LLM judge, complementing the
// rule-based checks with criteria the rules cannot verify (accuracy, entity
// correctness).
type JudgeEvaluator struct {
	// Chat is the underlying chatbot.
	Chat            llms.ChatLLM
	model           string
	temperature     float64
	maxOutputTokens int
}

// NewJudgeEvaluator creates a judge using the model named by
// OPENAI_JUDGE_MODEL (default gpt-4o-mini).
func NewJudgeEvaluator() (*JudgeEvaluator, error) {
	model := os.Getenv("OPENAI_JUDGE_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	chat, err := openai.NewChat(openai.WithModel(model))
	if err != nil {
		return nil, err
	}

	return &JudgeEvaluator{
		Chat:            chat,
		model:           model,
		temperature:     0,
		maxOutputTokens: 1500,
	}, nil
}

// Evaluate asks the judge to grade a logged answer against its question.
func (j *JudgeEvaluator) Evaluate(ctx context.Context, log *models.LLMLog) (*JudgeFeedback, error) {
	input := []schema.ChatMessage{
		schema.SystemChatMessage{Text: judgeInstructions},
		schema.HumanChatMessage{
			Text: fmt.Sprintf("Question: %v\n\nAgent answer:\n%v", log.UserPrompt, log.AssistantAnswer),
		},
		schema.HumanChatMessage{
			Text: `Respond with JSON only, no prose around it, in this shape: {"criteria": [{"criterion": "...", "passed": true, "judgement": "...", "score": 0.8}], "overall_score": 0.8, "summary": "...", "strengths": ["..."], "weaknesses": ["..."]}. Include one criteria entry per criterion in your instructions. Scores are 0 to 1.`,
		},
	}

	res, err := j.Chat.Call(ctx, input, llms.WithTemperature(j.temperature), llms.WithMaxTokens(j.maxOutputTokens))
	if err != nil {
		return nil, err
	}

	return parseJudgeFeedback(res)
}

// parseJudgeFeedback decodes the judge's reply, tolerating markdown code
// fences around the JSON.
func parseJudgeFeedback(s string) (*JudgeFeedback, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var feedback JudgeFeedback
	if err := json.Unmarshal([]byte(s), &feedback); err != nil {
		return nil, fmt.Errorf("parsing judge feedback: %w", err)
	}
	if len(feedback.Criteria) == 0 {
		return nil, fmt.Errorf("judge feedback has no criteria: %v", s)
	}

	return &feedback, nil
}

// Checks maps the feedback onto check rows, one per criterion plus an overall
// summary row. Judge rows are prefixed to keep them apart from the rule-based
// checks on the same log.
func (f *JudgeFeedback) Checks(logID uint) []models.Check {
	checks := make([]models.Check, 0, len(f.Criteria)+1)
	for _, criterion := range f.Criteria {
		passed := criterion.Passed
		message := criterion.Judgement
		if criterion.Score != nil {
			message = fmt.Sprintf("%v (score %.2f)", message, *criterion.Score)
		}
		checks = append(checks, models.Check{
			LogID:     logID,
			CheckName: "judge_" + criterionSlug(criterion.Criterion),
			Passed:    &passed,
			Message:   message,
		})
	}

	checks = append(checks, models.Check{
		LogID:     logID,
		CheckName: "judge_overall",
		Message:   fmt.Sprintf("score %.2f: %v", f.OverallScore, f.Summary),
	})

	return checks
}

// criterionSlug turns a criterion description like "Citation quality" into
// citation_quality.
func criterionSlug(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}
