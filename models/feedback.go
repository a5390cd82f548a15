package models

import (
	"errors"

	"gorm.io/gorm"
)

// Feedback is a human rating of an answer, optionally with a corrected
// reference answer.
type Feedback struct {
	Generic

	LogID           uint   `gorm:"index;not null"`
	Log             LLMLog `gorm:"foreignKey:LogID"`
	Rating          *int
	Comment         string
	ReferenceAnswer string
}

func (Feedback) TableName() string {
	return "feedback"
}

func CreateFeedback(db *gorm.DB, feedback *Feedback) (*Feedback, error) {
	if err := db.Create(feedback).Error; err != nil {
		return nil, err
	}

	return feedback, nil
}

func GetFeedbackForLog(db *gorm.DB, logID uint) ([]Feedback, error) {
	var feedback []Feedback
	err := db.Where("log_id = ?", logID).Order("created_at DESC").Find(&feedback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return feedback, nil
}
