package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secwatch/api"
	"secwatch/internal/agentlog"
	"secwatch/internal/entities"
	"secwatch/internal/guardrail"
	"secwatch/internal/retrieval"
)

// Question is a user question about a company's cybersecurity disclosures.
type Question struct {
	Text string `json:"text" binding:"required"`
}

// Source identifies a filing excerpt used in an answer.
type Source struct {
	Form         string `json:"form"`
	FilingDate   string `json:"filing_date"`
	SectionTitle string `json:"section_title"`
}

// Answer is the agent's response to a question.
type Answer struct {
	Text    string   `json:"text"`
	Company string   `json:"company,omitempty"`
	CIK     string   `json:"cik,omitempty"`
	Sources []Source `json:"sources,omitempty"`
}

type QuestionsController struct {
	Generator *retrieval.Generator
	Searcher  *retrieval.Searcher
	Logger    *zap.SugaredLogger
}

// Ask answers a question about cybersecurity disclosures from indexed SEC
// filings. Input goes through the guardrail first; the company named in the
// question is resolved to a CIK, including subsidiaries of tracked parents.
func (q QuestionsController) Ask(c *gin.Context) {
	var question Question
	if err := c.BindJSON(&question); err != nil {
		api.ResultError(c, []string{"invalidRequest"})
		return
	}

	guard := guardrail.Check(question.Text)
	if guard.Fail {
		q.Logger.Infow("question rejected by guardrail", "reasoning", guard.Reasoning, "flags", guard.SecurityFlags)
		api.ResultErrorWithData(c, []string{"questionRejected"}, gin.H{"reasoning": guard.Reasoning})
		return
	}

	ctx := c.Request.Context()

	plan, err := q.Generator.PlanRetrieval(ctx, guard.SanitizedInput)
	if err != nil {
		q.Logger.Errorw("retrieval planning failed", "error", err)
		api.ResultError(c, nil)
		return
	}

	if plan.EarlyResponse != nil {
		q.logInteraction(guard.SanitizedInput, *plan.EarlyResponse)
		api.ResultData(c, Answer{Text: *plan.EarlyResponse})
		return
	}

	cik, companyName, ok := q.resolveCompany(plan)
	if !ok {
		api.ResultErrorWithData(c, []string{"unknownCompany"}, gin.H{"company": plan.Company})
		return
	}

	chunks, err := q.Searcher.SearchDisclosures(ctx, retrieval.SearchParams{
		CIK:       cik,
		Query:     plan.Query,
		From:      plan.From,
		To:        plan.To,
		FormTypes: plan.FormTypes,
	})
	if err != nil {
		q.Logger.Errorw("disclosure search failed", "cik", cik, "error", err)
		api.ResultError(c, nil)
		return
	}

	answer, err := q.Generator.Answer(ctx, guard.SanitizedInput, companyName, cik, chunks)
	if err != nil {
		q.Logger.Errorw("answer generation failed", "cik", cik, "error", err)
		api.ResultError(c, nil)
		return
	}

	q.logInteraction(guard.SanitizedInput, answer)

	sources := make([]Source, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, Source{
			Form:         chunk.Metadata.Form,
			FilingDate:   chunk.Metadata.FilingDate,
			SectionTitle: chunk.Metadata.SectionTitle,
		})
	}

	api.ResultData(c, Answer{
		Text:    answer,
		Company: companyName,
		CIK:     cik,
		Sources: sources,
	})
}

// resolveCompany maps the planned company reference to a CIK. Subsidiary names
// resolve to their parent's CIK when the question's date window falls after
// the acquisition; the end of the window stands in for the incident date.
func (q QuestionsController) resolveCompany(plan *retrieval.Plan) (cik, name string, ok bool) {
	var incidentDate *time.Time
	if parsed, err := time.Parse("2006-01-02", plan.To); err == nil {
		incidentDate = &parsed
	}

	if parentCIK, sub, found := entities.ParentCIKForSubsidiary(plan.Company, incidentDate); found {
		q.Logger.Infow("resolved subsidiary to parent", "subsidiary", sub.LegalName, "cik", parentCIK)
		return parentCIK, sub.LegalName, true
	}

	if resolved, found := entities.LookupCIK(plan.Company); found {
		return resolved, plan.Company, true
	}

	return "", "", false
}

// logInteraction writes the exchange to the agent log directory for the
// monitoring runner. Usage stays empty: the chat client does not expose token
// counts, so these logs carry no cost estimates.
func (q QuestionsController) logInteraction(prompt, answer string) {
	path, err := agentlog.Save(agentlog.Entry{
		SystemPrompt: q.Generator.SystemPrompt(),
		Provider:     "openai",
		Model:        q.Generator.Model(),
		Tools:        []string{"search_cybersecurity_disclosures"},
		Messages: []agentlog.Message{
			{Role: "user", Content: prompt, Timestamp: time.Now().Format(time.RFC3339)},
			{Role: "assistant", Content: answer, Timestamp: time.Now().Format(time.RFC3339)},
		},
		Output:     answer,
		UserPrompt: prompt,
	})
	if err != nil {
		q.Logger.Errorw("failed to write agent log", "error", err)
		return
	}

	q.Logger.Debugw("wrote agent log", "path", path)
}
