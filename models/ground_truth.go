package models

import (
	"errors"

	"gorm.io/gorm"
)

// GroundTruthEntry pairs a logged question with its verified expected answer.
// Entries feed regression evaluation of the agent.
type GroundTruthEntry struct {
	Generic

	LogID          uint   `gorm:"index;not null"`
	Log            LLMLog `gorm:"foreignKey:LogID"`
	QuestionText   string `gorm:"not null"`
	ExpectedAnswer string
	CompanyName    string
	CIK            string
	FormType       string
	FilingDate     string
}

func (GroundTruthEntry) TableName() string {
	return "ground_truth_dataset"
}

func CreateGroundTruthEntry(db *gorm.DB, entry *GroundTruthEntry) (*GroundTruthEntry, error) {
	if err := db.Create(entry).Error; err != nil {
		return nil, err
	}

	return entry, nil
}

func ListGroundTruthEntries(db *gorm.DB, limit int) ([]GroundTruthEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var entries []GroundTruthEntry
	err := db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return entries, nil
}
