package fetcher

import (
	"fmt"
	"regexp"
	"strings"
)

// Section is a titled slice of a filing, such as "Item 1A. Risk Factors".
type Section struct {
	Title   string
	Content string
}

var sectionHeaderPattern = regexp.MustCompile(`(?i)(Item\s+\d+[A-Z]?\.?\s+[^\n]+)`)

// SplitSections breaks a filing's plain text into sections at "Item N"
// headers. Text before the first header becomes a "Preamble" section, and a
// filing with no headers at all becomes a single "Full Document" section.
func SplitSections(text string) []Section {
	matches := sectionHeaderPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []Section{{Title: "Full Document", Content: strings.TrimSpace(text)}}
	}

	var sections []Section
	if preamble := strings.TrimSpace(text[:matches[0][0]]); preamble != "" {
		sections = append(sections, Section{Title: "Preamble", Content: preamble})
	}

	for i, match := range matches {
		title := strings.TrimSpace(text[match[0]:match[1]])
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		content := strings.TrimSpace(text[match[1]:end])
		if content == "" {
			continue
		}
		sections = append(sections, Section{Title: title, Content: content})
	}

	return sections
}

// Splitter splits text into overlapping chunks.
type Splitter struct {
	chunkLength  int
	chunkOverlap int
}

// NewSplitter returns a new Splitter.
func NewSplitter(chunkLength, chunkOverlap int) (*Splitter, error) {
	if chunkLength <= 0 {
		return nil, fmt.Errorf("chunkLength must be greater than 0")
	}

	if chunkLength <= chunkOverlap {
		return nil, fmt.Errorf("chunkLength must be greater than chunkOverlap")
	}

	return &Splitter{
		chunkLength:  chunkLength,
		chunkOverlap: chunkOverlap,
	}, nil
}

// SplitText splits text into chunks of at most chunkLength bytes, each
// overlapping the previous one by chunkOverlap bytes.
func (s *Splitter) SplitText(t string) []string {
	chunks := make([]string, 0)

	for i := 0; i < len(t); i += s.chunkLength - s.chunkOverlap {
		end := i + s.chunkLength
		if end >= len(t) {
			chunks = append(chunks, t[i:])
			break
		}
		chunks = append(chunks, t[i:end])
	}

	return chunks
}

// SplitSectionText chunks a section's content, keeping sections that already
// fit within the chunk length as a single chunk.
func (s *Splitter) SplitSectionText(section Section) []string {
	if len(section.Content) <= s.chunkLength {
		return []string{section.Content}
	}
	return s.SplitText(section.Content)
}
