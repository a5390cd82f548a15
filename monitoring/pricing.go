package monitoring

import "strings"

// Per-million-token prices in USD. Unknown models get no cost estimate.
type modelPrice struct {
	inputPerMillion  float64
	outputPerMillion float64
}

var openAIPrices = map[string]modelPrice{
	"gpt-4o":        {2.50, 10.00},
	"gpt-4o-mini":   {0.15, 0.60},
	"gpt-4-turbo":   {10.00, 30.00},
	"gpt-4":         {30.00, 60.00},
	"gpt-3.5-turbo": {0.50, 1.50},
}

// EstimateCosts returns the estimated input, output, and total cost of an
// interaction. ok is false when the provider or model is not priced.
func EstimateCosts(provider, model string, inputTokens, outputTokens *int) (input, output, total float64, ok bool) {
	if provider != "openai" || inputTokens == nil || outputTokens == nil {
		return 0, 0, 0, false
	}

	price, found := openAIPrices[normalizeModel(model)]
	if !found {
		return 0, 0, 0, false
	}

	input = float64(*inputTokens) / 1e6 * price.inputPerMillion
	output = float64(*outputTokens) / 1e6 * price.outputPerMillion
	return input, output, input + output, true
}

// Longest names first so gpt-4o-mini-2024-07-18 resolves to gpt-4o-mini
// rather than gpt-4o.
var modelNamesByLength = []string{"gpt-3.5-turbo", "gpt-4o-mini", "gpt-4-turbo", "gpt-4o", "gpt-4"}

// normalizeModel strips dated suffixes like gpt-4o-2024-08-06 down to the
// base model name.
func normalizeModel(model string) string {
	model = strings.ToLower(strings.TrimSpace(model))
	for _, name := range modelNamesByLength {
		if model == name || strings.HasPrefix(model, name+"-") {
			return name
		}
	}
	return model
}
