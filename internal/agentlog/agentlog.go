// Package agentlog writes agent interaction logs as JSON files for the
// monitoring pipeline to ingest.
package agentlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one turn of an agent interaction.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Usage holds token counts for an interaction.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Entry is one complete agent interaction.
type Entry struct {
	AgentName    string    `json:"agent_name"`
	SystemPrompt string    `json:"system_prompt"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Tools        []string  `json:"tools"`
	Messages     []Message `json:"messages"`
	Usage        Usage     `json:"usage"`
	Output       string    `json:"output"`
	UserPrompt   string    `json:"user_prompt"`
	Timestamp    time.Time `json:"timestamp"`
}

// Save writes the entry to the logs directory (LOGS_DIR, default "logs") and
// returns the file path. Filenames carry the agent name, a timestamp, and a
// random suffix to avoid collisions.
func Save(entry Entry) (string, error) {
	logsDir := os.Getenv("LOGS_DIR")
	if logsDir == "" {
		logsDir = "logs"
	}

	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return "", err
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.AgentName == "" {
		entry.AgentName = "sec_cybersecurity_agent"
	}

	agentName := strings.ToLower(strings.ReplaceAll(entry.AgentName, " ", "_"))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	filename := fmt.Sprintf("%v_%v_%v.json", agentName, entry.Timestamp.Format("20060102_150405"), suffix)
	path := filepath.Join(logsDir, filename)

	b, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}

	return path, nil
}
