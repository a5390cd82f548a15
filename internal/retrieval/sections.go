package retrieval

import "strings"

// Sections of SEC filings most likely to carry cybersecurity disclosures.
// Item 1A is Risk Factors, Item 1B the dedicated Cybersecurity item, Item 7
// the Management's Discussion and Analysis.
var cybersecuritySections = []string{
	"Item 1A",
	"Item 1B",
	"Item 7",
	"Risk Factors",
	"Cybersecurity",
	"Management's Discussion",
}

var cybersecurityKeywords = []string{
	"cyber",
	"security",
	"breach",
	"ransomware",
	"data breach",
	"hack",
	"incident",
	"vulnerability",
}

// How much of a chunk's content to scan when its section title gives no
// signal.
const contentPreviewBytes = 500

// FilterCybersecuritySections keeps chunks from cybersecurity-relevant
// sections. A chunk passes when its section title matches one of the known
// section names (or an extra keyword), or failing that, when the start of its
// content mentions a cybersecurity keyword.
func FilterCybersecuritySections(chunks []Chunk, extraKeywords []string) []Chunk {
	if len(chunks) == 0 {
		return []Chunk{}
	}

	terms := make([]string, 0, len(cybersecuritySections)+len(extraKeywords))
	for _, s := range cybersecuritySections {
		terms = append(terms, strings.ToLower(s))
	}
	for _, k := range extraKeywords {
		terms = append(terms, strings.ToLower(k))
	}

	filtered := make([]Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if sectionMatches(chunk.Metadata.SectionTitle, terms) || contentMentionsCyber(chunk.Content) {
			filtered = append(filtered, chunk)
		}
	}

	return filtered
}

func sectionMatches(sectionTitle string, terms []string) bool {
	section := strings.ToLower(sectionTitle)
	for _, term := range terms {
		if strings.Contains(section, term) {
			return true
		}
	}
	return false
}

func contentMentionsCyber(content string) bool {
	preview := strings.ToLower(content)
	if len(preview) > contentPreviewBytes {
		preview = preview[:contentPreviewBytes]
	}
	for _, keyword := range cybersecurityKeywords {
		if strings.Contains(preview, keyword) {
			return true
		}
	}
	return false
}
