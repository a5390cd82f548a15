// Package monitoring ingests agent interaction logs, evaluates answer quality
// with rule-based checks, and records the results.
package monitoring

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"secwatch/models"
)

const (
	defaultProvider  = "openai"
	defaultAgentName = "sec_cybersecurity_agent"
)

// logDocument is the on-disk shape of an agent log file. Several fields accept
// more than one JSON type, so they stay raw until decoded.
type logDocument struct {
	AgentName    string          `json:"agent_name"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	SystemPrompt json.RawMessage `json:"system_prompt"`
	Messages     []logMessage    `json:"messages"`
	Usage        logUsage        `json:"usage"`
	Output       json.RawMessage `json:"output"`
	Timestamp    string          `json:"timestamp"`
	CreatedAt    string          `json:"created_at"`
	Date         string          `json:"date"`
}

type logMessage struct {
	Kind      string          `json:"kind"`
	Role      string          `json:"role"`
	Parts     []logPart       `json:"parts"`
	Content   json.RawMessage `json:"content"`
	Timestamp string          `json:"timestamp"`
}

type logPart struct {
	PartKind string          `json:"part_kind"`
	Content  json.RawMessage `json:"content"`
}

type logUsage struct {
	InputTokens       *int `json:"input_tokens"`
	TotalInputTokens  *int `json:"total_input_tokens"`
	OutputTokens      *int `json:"output_tokens"`
	TotalOutputTokens *int `json:"total_output_tokens"`
}

type structuredOutput struct {
	Title    string `json:"title"`
	Sections []struct {
		Heading string `json:"heading"`
		Content string `json:"content"`
	} `json:"sections"`
}

// ParseLogFile reads an agent log file and maps it onto an LLMLog record.
func ParseLogFile(path string) (*models.LLMLog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc logDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parsing %v: %w", path, err)
	}

	log := models.LLMLog{
		Filepath:          path,
		AgentName:         doc.AgentName,
		Provider:          doc.Provider,
		Model:             doc.Model,
		UserPrompt:        firstUserPrompt(doc.Messages),
		Instructions:      instructions(doc.SystemPrompt),
		TotalInputTokens:  firstNonNil(doc.Usage.InputTokens, doc.Usage.TotalInputTokens),
		TotalOutputTokens: firstNonNil(doc.Usage.OutputTokens, doc.Usage.TotalOutputTokens),
		AssistantAnswer:   extractAnswer(doc),
	}

	if log.AgentName == "" {
		log.AgentName = defaultAgentName
	}
	if log.Provider == "" {
		log.Provider = defaultProvider
	}
	if ts, ok := extractTimestamp(doc); ok {
		log.CreatedAt = ts
	}

	return &log, nil
}

// firstUserPrompt returns the first user prompt in the message list. Messages
// come in two formats: kind/parts and role/content.
func firstUserPrompt(messages []logMessage) string {
	for _, msg := range messages {
		if msg.Kind == "user" || msg.Kind == "request" {
			for _, part := range msg.Parts {
				if part.PartKind != "user-prompt" {
					continue
				}
				if content, ok := decodeString(part.Content); ok {
					return content
				}
			}
		} else if msg.Role == "user" {
			if content, ok := decodeString(msg.Content); ok {
				return content
			}
			if content, ok := decodeContentList(msg.Content); ok {
				return content
			}
		}
	}

	return ""
}

func instructions(raw json.RawMessage) string {
	if s, ok := decodeString(raw); ok {
		return s
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return ""
	}

	var parts []string
	for _, item := range list {
		if s, ok := decodeString(item); ok {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, "\n")
}

// extractAnswer prefers the top-level output field, falling back to the last
// assistant message. Structured outputs are flattened into plain text.
func extractAnswer(doc logDocument) string {
	if s, ok := decodeString(doc.Output); ok {
		return s
	}

	var structured structuredOutput
	if err := json.Unmarshal(doc.Output, &structured); err == nil {
		var chunks []string
		if structured.Title != "" {
			chunks = append(chunks, structured.Title)
		}
		for _, section := range structured.Sections {
			if section.Heading != "" {
				chunks = append(chunks, section.Heading)
			}
			if section.Content != "" {
				chunks = append(chunks, section.Content)
			}
		}
		if len(chunks) > 0 {
			return strings.Join(chunks, "\n\n")
		}
	}

	for i := len(doc.Messages) - 1; i >= 0; i-- {
		msg := doc.Messages[i]
		if msg.Kind != "assistant" && msg.Role != "assistant" {
			continue
		}
		for _, part := range msg.Parts {
			if content, ok := decodeString(part.Content); ok {
				return content
			}
		}
	}

	return ""
}

func extractTimestamp(doc logDocument) (time.Time, bool) {
	for _, candidate := range []string{doc.Timestamp, doc.CreatedAt, doc.Date} {
		if ts, ok := parseTimestamp(candidate); ok {
			return ts, true
		}
	}

	for i := len(doc.Messages) - 1; i >= 0; i-- {
		if ts, ok := parseTimestamp(doc.Messages[i].Timestamp); ok {
			return ts, true
		}
	}

	return time.Time{}, false
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeContentList handles role-format content given as a list of strings or
// {"text": ...} objects.
func decodeContentList(raw json.RawMessage) (string, bool) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", false
	}

	for _, item := range list {
		if s, ok := decodeString(item); ok {
			return s, true
		}
		var obj struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(item, &obj); err == nil && obj.Text != nil {
			return *obj.Text, true
		}
	}

	return "", false
}

func firstNonNil(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
