package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

const systemPrompt = "You are SECWATCH, a research assistant that reports on cybersecurity disclosures in SEC filings. You only use the content of indexed SEC filings (10-K, 10-Q, 8-K and related forms) as your source of data. You never answer from general knowledge. Today is %v."

// Plan is the outcome of a retrieval-planning round. When EarlyResponse is
// non-nil the model answered directly and no retrieval is needed; otherwise
// the search arguments are populated.
type Plan struct {
	EarlyResponse *string
	Company       string
	Query         string
	From          string
	To            string
	FormTypes     []string
}

// Generator completes questions about cybersecurity disclosures with AI.
type Generator struct {
	// Chat is the underlying chatbot.
	Chat            llms.ChatLLM
	model           string
	temperature     float64
	maxOutputTokens int
}

// NewGenerator creates a new answer generator using the model named by
// OPENAI_CONVERSATIONAL_MODEL.
func NewGenerator() (*Generator, error) {
	model := os.Getenv("OPENAI_CONVERSATIONAL_MODEL")
	chat, err := openai.NewChat(openai.WithModel(model))
	if err != nil {
		return nil, err
	}

	return &Generator{
		Chat:            chat,
		model:           model,
		temperature:     0.2,
		maxOutputTokens: 1500,
	}, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.model
}

// PlanRetrieval asks the model to either answer the question directly or
// produce arguments for a search_cybersecurity_disclosures call: which
// company, what query text, and what date window to search.
func (g *Generator) PlanRetrieval(ctx context.Context, question string) (*Plan, error) {
	questionFormatted := jsonEscapeString(question)
	jsonStr := fmt.Sprintf(`
{
	"model": "%v",
	"messages": [
		{"role": "system", "content": "%v"},
		{"role": "user", "content": "You will receive a question about cybersecurity disclosures of a publicly traded company. You can either respond right away or call search_cybersecurity_disclosures, which searches indexed SEC filing chunks by company, query text, and filing date range."},
		{"role": "user", "content": "Respond directly only when the question cannot be answered from SEC filings at all (for example, when it names no company). Otherwise call the function. Phrase the query so it matches disclosure language in filings (e.g. \"cybersecurity incident\", \"data breach\", \"ransomware\"). Choose the date range from the question; default to the last three years. Dates are YYYY-MM-DD."},
		{"role": "user", "content": "%v"}
	],
	"temperature": %v,
	"functions": [
		{
			"name": "search_cybersecurity_disclosures",
			"description": "Search indexed SEC filing chunks for cybersecurity disclosures.",
			"parameters": {
				"type": "object",
				"properties": {
					"company": {
						"type": "string",
						"description": "Company name or ticker symbol as given in the question."
					},
					"query": {
						"type": "string",
						"description": "Full-text query to match against filing content."
					},
					"start_date": {"type": "string", "description": "Start of the filing date range, YYYY-MM-DD."},
					"end_date": {"type": "string", "description": "End of the filing date range, YYYY-MM-DD."},
					"form_types": {
						"type": "array",
						"items": {"type": "string"},
						"description": "Optional form types to restrict to, e.g. [\"10-K\", \"8-K\"]."
					}
				},
				"required": ["company", "query", "start_date", "end_date"]
			}
		}
	],
	"function_call": "auto"
}
`, g.model, fmt.Sprintf(systemPrompt, time.Now().Format("2006-01-02")), questionFormatted, g.temperature)

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader([]byte(jsonStr)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", os.Getenv("OPENAI_API_KEY")))
	req.Header.Set("Content-Type", "application/json")

	client := retryablehttp.NewClient()
	client.Logger = nil
	resp, err := client.StandardClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	type FunctionCall struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}
	type Message struct {
		FunctionCall *FunctionCall `json:"function_call,omitempty"`
		Content      string        `json:"content"`
	}
	type Choice struct {
		Message Message `json:"message"`
	}
	type Response struct {
		Choices []Choice `json:"choices"`
	}

	var res Response
	err = json.Unmarshal(b, &res)
	if err != nil {
		return nil, err
	}
	if len(res.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned: %v", string(b))
	}

	m := res.Choices[0].Message
	if m.FunctionCall == nil {
		return &Plan{EarlyResponse: &m.Content}, nil
	}

	var args struct {
		Company   string   `json:"company"`
		Query     string   `json:"query"`
		StartDate string   `json:"start_date"`
		EndDate   string   `json:"end_date"`
		FormTypes []string `json:"form_types"`
	}
	err = json.Unmarshal([]byte(m.FunctionCall.Arguments), &args)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Company:   args.Company,
		Query:     args.Query,
		From:      args.StartDate,
		To:        args.EndDate,
		FormTypes: args.FormTypes,
	}, nil
}

// Answer generates a cited answer to the question from the retrieved filing
// chunks. It instructs the model to cite form type and filing date for every
// claim and to say explicitly when the filings do not cover the question.
func (g *Generator) Answer(ctx context.Context, question, company, cik string, chunks []Chunk) (string, error) {
	var excerpts string
	for i, chunk := range chunks {
		excerpts += fmt.Sprintf("Excerpt %v (form %v, filed %v, section %v): %v\n",
			i+1, chunk.Metadata.Form, chunk.Metadata.FilingDate, chunk.Metadata.SectionTitle, chunk.Content)
	}

	input := []schema.ChatMessage{
		schema.SystemChatMessage{
			Text: fmt.Sprintf(systemPrompt, time.Now().Format("2006-01-02")),
		},
		schema.HumanChatMessage{
			Text: fmt.Sprintf("The question pertains to %v (CIK %v). I am going to provide excerpts from the company's SEC filings that were retrieved as relevant to the question. Use only these excerpts as your source of data.", company, cik),
		},
		schema.HumanChatMessage{
			Text: fmt.Sprintf("Here are the excerpts:\n%v", excerpts),
		},
		schema.HumanChatMessage{
			Text: fmt.Sprintf("Question: %v", question),
		},
		schema.HumanChatMessage{
			Text: "Now answer the question using only the excerpts. Cite the form type and filing date for every claim, for example (10-K, filed 2023-02-09). Structure the answer with short sections. If the excerpts do not contain the information needed, say that no disclosures were found in the indexed filings and explain what is missing. Do not fall back on general knowledge.",
		},
	}

	res, err := g.Chat.Call(ctx, input, llms.WithTemperature(g.temperature), llms.WithMaxTokens(g.maxOutputTokens))
	if err != nil {
		return "", err
	}

	return res, nil
}

// SystemPrompt returns the rendered system prompt, for logging.
func (g *Generator) SystemPrompt() string {
	return fmt.Sprintf(systemPrompt, time.Now().Format("2006-01-02"))
}

// jsonEscapeString escapes a string as a JSON string. For instance, it
// converts newline characters to "\n". Start and end quotation marks are
// removed.
func jsonEscapeString(i string) string {
	b, err := json.Marshal(i)
	if err != nil {
		return ""
	}
	s := string(b)
	return s[1 : len(s)-1]
}
