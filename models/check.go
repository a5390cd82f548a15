package models

import (
	"errors"

	"gorm.io/gorm"
)

// Names of the automated quality checks run against each log.
const (
	CheckDataSourceAdherence     = "data_source_adherence"
	CheckCitationQuality         = "citation_quality"
	CheckInformationAccuracy     = "information_accuracy"
	CheckCompleteness            = "completeness"
	CheckMissingDocumentHandling = "missing_document_handling"
	CheckResponseStructure       = "response_structure"
	CheckEntityResolution        = "entity_resolution"
)

// Check is one automated evaluation result for a log. Passed is nil when the
// check did not apply to the log.
type Check struct {
	Generic

	LogID     uint   `gorm:"index;not null"`
	Log       LLMLog `gorm:"foreignKey:LogID"`
	CheckName string `gorm:"not null"`
	Passed    *bool
	Message   string
}

func CreateChecks(db *gorm.DB, checks []Check) error {
	if len(checks) == 0 {
		return nil
	}

	return db.Create(&checks).Error
}

func GetChecksForLog(db *gorm.DB, logID uint) ([]Check, error) {
	var checks []Check
	err := db.Where("log_id = ?", logID).Order("check_name").Find(&checks).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return checks, nil
}
