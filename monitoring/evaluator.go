package monitoring

import (
	"fmt"
	"regexp"
	"strings"

	"secwatch/models"
)

// Phrases that indicate the agent answered from general knowledge instead of
// the indexed filings.
var forbiddenPhrases = []string{
	"based on general knowledge",
	"based on publicly available",
	"while there are no documented disclosures",
	"we can outline general risks",
	"even though specific sec filings are not available",
	"based on general context",
	"here is an overview based on",
	"it is important to highlight that while i could not find",
	"however, based on",
}

var secFormTypes = []string{"8-k", "10-k", "10-q", "6-k", "20-f", "8-k/a"}

var (
	cikMentionPattern     = regexp.MustCompile(`\b\d{10}\b`)
	companySuffixPattern  = regexp.MustCompile(`(?i)\b(Company|Corporation|Inc\.|LLC|Ltd\.)`)
	missingIndicators     = []string{"not available", "not found", "missing", "unavailable", "not in the index", "not disclosed", "no filings found"}
	explanationIndicators = []string{"because", "due to", "reason", "explain", "why", "may not be available"}
)

// RuleBasedEvaluator runs the automated quality checks against a log. Each
// check is tri-state: pass, fail, or not applicable (nil).
type RuleBasedEvaluator struct{}

// Evaluate returns one Check per rule for the given log.
func (e *RuleBasedEvaluator) Evaluate(logID uint, log *models.LLMLog) []models.Check {
	answer := log.AssistantAnswer

	return []models.Check{
		e.checkDataSourceAdherence(logID, answer),
		e.checkCitationQuality(logID, answer),
		e.checkInformationAccuracy(logID, answer),
		e.checkCompleteness(logID, answer),
		e.checkMissingDocumentHandling(logID, answer),
		e.checkResponseStructure(logID, answer),
		e.checkEntityResolution(logID, answer),
	}
}

func (e *RuleBasedEvaluator) checkDataSourceAdherence(logID uint, answer string) models.Check {
	lower := strings.ToLower(answer)

	var violations []string
	for _, phrase := range forbiddenPhrases {
		if strings.Contains(lower, phrase) {
			violations = append(violations, phrase)
		}
	}

	if len(violations) > 0 {
		if len(violations) > 3 {
			violations = violations[:3]
		}
		return check(logID, models.CheckDataSourceAdherence, failed,
			fmt.Sprintf("Found forbidden phrases indicating general knowledge usage: %v", strings.Join(violations, ", ")))
	}

	return check(logID, models.CheckDataSourceAdherence, passed, "Response adheres to SEC-only data sources")
}

func (e *RuleBasedEvaluator) checkCitationQuality(logID uint, answer string) models.Check {
	lower := strings.ToLower(answer)

	citationCount := 0
	for _, formType := range secFormTypes {
		citationCount += strings.Count(lower, formType)
	}

	hasCitations := citationCount > 0 || strings.Contains(lower, "filed") || strings.Contains(lower, "filing")

	switch {
	case hasCitations && citationCount > 0:
		return check(logID, models.CheckCitationQuality, passed,
			fmt.Sprintf("Response includes SEC filing citations (%v form types mentioned)", citationCount))
	case strings.Contains(lower, "no cybersecurity disclosures found") || strings.Contains(lower, "no information available"):
		return check(logID, models.CheckCitationQuality, notApplicable, "No filings found, citation check not applicable")
	default:
		return check(logID, models.CheckCitationQuality, failed, "Response lacks proper SEC filing citations")
	}
}

func (e *RuleBasedEvaluator) checkInformationAccuracy(logID uint, answer string) models.Check {
	if len(answer) < 10 {
		return check(logID, models.CheckInformationAccuracy, failed, "Response is too short to evaluate accuracy")
	}

	// Full accuracy validation needs a ground truth entry to compare against.
	return check(logID, models.CheckInformationAccuracy, notApplicable, "Accuracy check requires ground truth comparison")
}

func (e *RuleBasedEvaluator) checkCompleteness(logID uint, answer string) models.Check {
	if len(strings.TrimSpace(answer)) < 10 {
		return check(logID, models.CheckCompleteness, failed, "Response is empty or too short")
	}

	if len(answer) < 50 {
		return check(logID, models.CheckCompleteness, failed, "Response appears incomplete (too short)")
	}

	return check(logID, models.CheckCompleteness, passed, "Response appears complete")
}

func (e *RuleBasedEvaluator) checkMissingDocumentHandling(logID uint, answer string) models.Check {
	lower := strings.ToLower(answer)

	if !containsAny(lower, missingIndicators) {
		return check(logID, models.CheckMissingDocumentHandling, notApplicable, "No missing documents mentioned")
	}

	if containsAny(lower, explanationIndicators) {
		return check(logID, models.CheckMissingDocumentHandling, passed, "Response identifies missing information and explains why")
	}

	return check(logID, models.CheckMissingDocumentHandling, notApplicable, "Response mentions missing information but doesn't explain why")
}

func (e *RuleBasedEvaluator) checkResponseStructure(logID uint, answer string) models.Check {
	if len(strings.TrimSpace(answer)) < 10 {
		return check(logID, models.CheckResponseStructure, failed, "Response is empty or too short")
	}

	hasSections := strings.Contains(answer, "##") ||
		strings.Contains(answer, "**") ||
		strings.Count(answer, "\n\n") >= 2

	if hasSections {
		return check(logID, models.CheckResponseStructure, passed, "Response has clear structure with sections")
	}

	return check(logID, models.CheckResponseStructure, notApplicable, "Response structure could be improved with clearer sections")
}

func (e *RuleBasedEvaluator) checkEntityResolution(logID uint, answer string) models.Check {
	if cikMentionPattern.MatchString(answer) || companySuffixPattern.MatchString(answer) {
		return check(logID, models.CheckEntityResolution, passed, "Response includes company identification (CIK or company name)")
	}

	return check(logID, models.CheckEntityResolution, notApplicable, "Cannot verify entity resolution without explicit CIK or company name")
}

type checkOutcome int

const (
	passed checkOutcome = iota
	failed
	notApplicable
)

func check(logID uint, name string, outcome checkOutcome, message string) models.Check {
	c := models.Check{
		LogID:     logID,
		CheckName: name,
		Message:   message,
	}

	switch outcome {
	case passed:
		v := true
		c.Passed = &v
	case failed:
		v := false
		c.Passed = &v
	}

	return c
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
