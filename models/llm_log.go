package models

import (
	"errors"

	"gorm.io/gorm"
)

// LLMLog is one parsed agent interaction: the question asked, the answer
// produced, and the token usage and cost of producing it.
type LLMLog struct {
	Generic

	Filepath          string `gorm:"not null"`
	AgentName         string
	Provider          string `gorm:"index"`
	Model             string `gorm:"index"`
	UserPrompt        string
	Instructions      string
	TotalInputTokens  *int
	TotalOutputTokens *int
	AssistantAnswer   string
	InputCost         float64
	OutputCost        float64
	TotalCost         float64
}

func (LLMLog) TableName() string {
	return "llm_logs"
}

func CreateLLMLog(db *gorm.DB, log *LLMLog) (*LLMLog, error) {
	if err := db.Create(log).Error; err != nil {
		return nil, err
	}

	return log, nil
}

// LLMLogFilter narrows ListLLMLogs. Zero values mean no filtering.
type LLMLogFilter struct {
	Provider  string
	Model     string
	AgentName string
	Limit     int
}

func ListLLMLogs(db *gorm.DB, filter LLMLogFilter) ([]LLMLog, error) {
	query := db.Model(&LLMLog{})
	if filter.Provider != "" {
		query = query.Where("provider = ?", filter.Provider)
	}
	if filter.Model != "" {
		query = query.Where("model = ?", filter.Model)
	}
	if filter.AgentName != "" {
		query = query.Where("agent_name = ?", filter.AgentName)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var logs []LLMLog
	err := query.Order("created_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return logs, nil
}

func GetLLMLog(db *gorm.DB, id uint) (*LLMLog, error) {
	var log LLMLog
	err := db.First(&log, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &log, nil
}

// GetLLMLogByFilepath reports whether a log file was already ingested.
func GetLLMLogByFilepath(db *gorm.DB, filepath string) (*LLMLog, error) {
	var log LLMLog
	err := db.Where("filepath = ?", filepath).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &log, nil
}
