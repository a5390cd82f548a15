// Package guardrail validates user input before the agent processes it. It
// scrubs injection attempts and gates questions to the agent's topic:
// cybersecurity disclosures in SEC filings.
package guardrail

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxInputLength caps question length in bytes.
const MaxInputLength = 5000

// Result is the outcome of a guardrail check. Fail means execution must stop.
type Result struct {
	Reasoning      string   `json:"reasoning"`
	Fail           bool     `json:"fail"`
	SanitizedInput string   `json:"sanitized_input"`
	SecurityFlags  []string `json:"security_flags,omitempty"`
}

var promptInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(your\s+)?(previous|prior|earlier|above|all)\s+(instructions?|prompts?|directives?)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(in\s+)?(dan|jailbreak|developer|unrestricted)\s+mode`),
	regexp.MustCompile(`(?i)forget\s+(your\s+)?(instructions?|prompts?|directives?)`),
	regexp.MustCompile(`(?i)disregard\s+(your\s+)?(previous|prior|earlier|above)\s+(instructions?|prompts?)`),
	regexp.MustCompile(`(?i)override\s+(your\s+)?(instructions?|prompts?|directives?)`),
	regexp.MustCompile(`(?i)system\s*:\s*`),
	regexp.MustCompile(`(?i)assistant\s*:\s*`),
	regexp.MustCompile(`(?i)new\s+(instructions?|prompts?|directives?)`),
	regexp.MustCompile(`(?i)pretend\s+(to\s+be|you\s+are|that\s+you)`),
	regexp.MustCompile(`(?i)roleplay\s+(as|that\s+you)`),
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

var jsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)document\.`),
	regexp.MustCompile(`(?i)window\.`),
}

var sqlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(union|select|insert|update|delete|drop|create|alter|exec|execute)\s+`),
	regexp.MustCompile(`(?i)(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(?i);\s*(drop|delete|update|insert)`),
}

var zeroWidthRunes = []rune{
	'\u200b', // zero-width space
	'\u200c', // zero-width non-joiner
	'\u200d', // zero-width joiner
	'\u2060', // word joiner
	'\ufeff', // zero-width no-break space
	'\u180e', // Mongolian vowel separator
}

var (
	cyrillicPattern   = regexp.MustCompile(`[а-я]`)
	greekPattern      = regexp.MustCompile(`[α-ω]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Keywords that mark a question as on-topic for the agent.
var topicKeywords = []string{
	"cybersecurity",
	"cyber",
	"data breach",
	"breach",
	"ransomware",
	"hack",
	"incident",
	"vulnerability",
	"security",
	"disclosure",
	"sec filing",
	"8-k",
	"10-k",
	"10-q",
}

// Sanitize preprocesses user input and neutralizes attack attempts. It
// returns the sanitized message and the list of security flags raised.
func Sanitize(message string) (string, []string) {
	var flags []string
	sanitized := message

	if len(sanitized) > MaxInputLength {
		flags = append(flags, fmt.Sprintf("input length exceeds maximum (%v > %v)", len(sanitized), MaxInputLength))
		sanitized = sanitized[:MaxInputLength]
	}

	for _, r := range zeroWidthRunes {
		if strings.ContainsRune(sanitized, r) {
			flags = append(flags, fmt.Sprintf("removed zero-width character %q", r))
			sanitized = strings.ReplaceAll(sanitized, string(r), "")
		}
	}

	if cyrillicPattern.MatchString(sanitized) {
		flags = append(flags, "Cyrillic characters detected")
	}
	if greekPattern.MatchString(sanitized) {
		flags = append(flags, "Greek letters detected")
	}

	for _, pattern := range promptInjectionPatterns {
		if pattern.MatchString(sanitized) {
			flags = append(flags, fmt.Sprintf("potential prompt injection detected: %v", truncatePattern(pattern)))
			sanitized = pattern.ReplaceAllString(sanitized, "")
		}
	}

	if matches := htmlTagPattern.FindAllString(sanitized, -1); len(matches) > 0 {
		flags = append(flags, fmt.Sprintf("removed %v HTML/XML tag(s)", len(matches)))
		sanitized = htmlTagPattern.ReplaceAllString(sanitized, "")
	}

	for _, pattern := range jsPatterns {
		if pattern.MatchString(sanitized) {
			flags = append(flags, fmt.Sprintf("JavaScript detected and removed: %v", truncatePattern(pattern)))
			sanitized = pattern.ReplaceAllString(sanitized, "")
		}
	}

	for _, pattern := range sqlPatterns {
		if pattern.MatchString(sanitized) {
			flags = append(flags, fmt.Sprintf("SQL-like syntax detected and removed: %v", truncatePattern(pattern)))
			sanitized = pattern.ReplaceAllString(sanitized, "")
		}
	}

	sanitized = whitespacePattern.ReplaceAllString(sanitized, " ")
	sanitized = strings.TrimSpace(sanitized)

	return sanitized, flags
}

// Check validates a question before the agent runs. It fails on critical
// security flags and on questions outside the agent's topic.
func Check(message string) Result {
	sanitized, flags := Sanitize(message)

	var critical []string
	for _, flag := range flags {
		lower := strings.ToLower(flag)
		if strings.Contains(lower, "injection") || strings.Contains(lower, "javascript") ||
			strings.Contains(lower, "sql") || strings.Contains(lower, "exceeds maximum") {
			critical = append(critical, flag)
		}
	}
	if len(critical) > 0 {
		if len(critical) > 3 {
			critical = critical[:3]
		}
		return Result{
			Reasoning:      fmt.Sprintf("Security threat detected: %v. Input rejected.", strings.Join(critical, "; ")),
			Fail:           true,
			SanitizedInput: sanitized,
			SecurityFlags:  flags,
		}
	}

	lower := strings.ToLower(sanitized)
	for _, keyword := range topicKeywords {
		if strings.Contains(lower, keyword) {
			return Result{
				Reasoning:      fmt.Sprintf("Question is about cybersecurity disclosures (contains: %v)", keyword),
				Fail:           false,
				SanitizedInput: sanitized,
				SecurityFlags:  flags,
			}
		}
	}

	return Result{
		Reasoning:      "Question is not about cybersecurity disclosures in SEC filings. This agent only answers questions about cybersecurity disclosures.",
		Fail:           true,
		SanitizedInput: sanitized,
		SecurityFlags:  flags,
	}
}

func truncatePattern(p *regexp.Regexp) string {
	s := p.String()
	if len(s) > 50 {
		return s[:50] + "..."
	}
	return s
}
