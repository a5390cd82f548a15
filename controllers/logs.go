package controllers

import (
	"bytes"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"secwatch/api"
	"secwatch/core"
	"secwatch/models"
)

type LogsController struct {
	Logger *zap.SugaredLogger
}

// LogDetail is a log with its evaluation results and human feedback.
type LogDetail struct {
	models.LLMLog
	AnswerHTML string            `json:"answer_html,omitempty"`
	Checks     []models.Check    `json:"checks"`
	Feedback   []models.Feedback `json:"feedback"`
}

// FeedbackInput is a human rating of an answer. Rating is 1 to 5 when given.
type FeedbackInput struct {
	Rating          *int   `json:"rating"`
	Comment         string `json:"comment"`
	ReferenceAnswer string `json:"reference_answer"`
}

// GroundTruthInput promotes a logged question to the ground truth dataset.
type GroundTruthInput struct {
	QuestionText   string `json:"question_text"`
	ExpectedAnswer string `json:"expected_answer"`
	CompanyName    string `json:"company_name"`
	CIK            string `json:"cik"`
	FormType       string `json:"form_type"`
	FilingDate     string `json:"filing_date"`
}

// GetLogs lists ingested logs, optionally filtered by provider and model.
func (lc LogsController) GetLogs(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			api.ResultError(c, []string{"invalidRequest"})
			return
		}
		limit = parsed
	}

	db, _ := core.GetDB()

	logs, err := models.ListLLMLogs(db, models.LLMLogFilter{
		Provider:  c.Query("provider"),
		Model:     c.Query("model"),
		AgentName: c.Query("agent"),
		Limit:     limit,
	})
	if err != nil {
		lc.Logger.Errorw("failed to list logs", "error", err)
		api.ResultError(c, nil)
		return
	}

	api.ResultData(c, logs)
}

// GetLog returns one log with its checks, feedback, and the answer rendered
// as HTML.
func (lc LogsController) GetLog(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.ResultError(c, []string{"invalidRequest"})
		return
	}

	db, _ := core.GetDB()

	log, err := models.GetLLMLog(db, uint(id))
	if err != nil {
		lc.Logger.Errorw("failed to get log", "id", id, "error", err)
		api.ResultError(c, nil)
		return
	}
	if log == nil {
		api.ResultNotFound(c)
		return
	}

	checks, err := models.GetChecksForLog(db, log.ID)
	if err != nil {
		lc.Logger.Errorw("failed to get checks", "id", id, "error", err)
		api.ResultError(c, nil)
		return
	}

	feedback, err := models.GetFeedbackForLog(db, log.ID)
	if err != nil {
		lc.Logger.Errorw("failed to get feedback", "id", id, "error", err)
		api.ResultError(c, nil)
		return
	}

	detail := LogDetail{
		LLMLog:   *log,
		Checks:   checks,
		Feedback: feedback,
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(log.AssistantAnswer), &buf); err == nil {
		detail.AnswerHTML = buf.String()
	}

	api.ResultData(c, detail)
}

// PostFeedback records human feedback on a log's answer.
func (lc LogsController) PostFeedback(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.ResultError(c, []string{"invalidRequest"})
		return
	}

	var input FeedbackInput
	if err := c.BindJSON(&input); err != nil {
		api.ResultError(c, []string{"invalidRequest"})
		return
	}

	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		api.ResultError(c, []string{"ratingOutOfRange"})
		return
	}

	db, _ := core.GetDB()

	log, err := models.GetLLMLog(db, uint(id))
	if err != nil {
		lc.Logger.Errorw("failed to get log", "id", id, "error", err)
		api.ResultError(c, nil)
		return
	}
	if log == nil {
		api.ResultNotFound(c)
		return
	}

	feedback, err := models.CreateFeedback(db, &models.Feedback{
		LogID:           log.ID,
		Rating:          input.Rating,
		Comment:         input.Comment,
		ReferenceAnswer: input.ReferenceAnswer,
	})
	if err != nil {
		lc.Logger.Errorw("failed to create feedback", "id", id, "error", err)
		api.ResultError(c, nil)
		return
	}

	api.ResultData(c, feedback)
}

// GetGroundTruth lists the ground truth dataset.
func (lc LogsController) GetGroundTruth(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			api.ResultError(c, []string{"invalidRequest"})
			return
		}
		limit = parsed
	}

	db, _ := core.GetDB()

	entries, err := models.ListGroundTruthEntries(db, limit)
	if err != nil {
		lc.Logger.Errorw("failed to list ground truth entries", "error", err)
		api.ResultError(c, nil)
		return
	}

	api.ResultData(c, entries)
}

// PostGroundTruth adds a log's question to the ground truth dataset. The
// question text defaults to the log's user prompt and the expected answer to
// its assistant answer.
func (lc LogsController) PostGroundTruth(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		api.ResultError(c, []string{"invalidRequest"})
		return
	}

	var input GroundTruthInput
	if err := c.BindJSON(&input); err != nil {
		api.ResultError(c, []string{"invalidRequest"})
		return
	}

	db, _ := core.GetDB()

	log, err := models.GetLLMLog(db, uint(id))
	if err != nil {
		lc.Logger.Errorw("failed to get log", "id", id, "error", err)
		api.ResultError(c, nil)
		return
	}
	if log == nil {
		api.ResultNotFound(c)
		return
	}

	questionText := input.QuestionText
	if questionText == "" {
		questionText = log.UserPrompt
	}
	if questionText == "" {
		api.ResultError(c, []string{"questionTextRequired"})
		return
	}

	expectedAnswer := input.ExpectedAnswer
	if expectedAnswer == "" {
		expectedAnswer = log.AssistantAnswer
	}

	entry, err := models.CreateGroundTruthEntry(db, &models.GroundTruthEntry{
		LogID:          log.ID,
		QuestionText:   questionText,
		ExpectedAnswer: expectedAnswer,
		CompanyName:    input.CompanyName,
		CIK:            input.CIK,
		FormType:       input.FormType,
		FilingDate:     input.FilingDate,
	})
	if err != nil {
		lc.Logger.Errorw("failed to create ground truth entry", "id", id, "error", err)
		api.ResultError(c, nil)
		return
	}

	api.ResultData(c, entry)
}
