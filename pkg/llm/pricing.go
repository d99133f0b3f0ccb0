package llm

// ModelPricing holds per-model rates in USD per million tokens.
type ModelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// pricingTable is the static rate table used for cost observability.
// Models absent from the table cost zero.
var pricingTable = map[string]ModelPricing{
	"o1":                {InputPerMTok: 15, OutputPerMTok: 60},
	"o3-mini":           {InputPerMTok: 1.1, OutputPerMTok: 4.4},
	"gpt-4o-mini":       {InputPerMTok: 0.15, OutputPerMTok: 0.6},
	"gpt-4o":            {InputPerMTok: 2.5, OutputPerMTok: 10},
	"gpt-4.1":           {InputPerMTok: 2, OutputPerMTok: 8},
	"deepseek-chat":     {InputPerMTok: 0.27, OutputPerMTok: 1.10},
	"deepseek-reasoner": {InputPerMTok: 0.55, OutputPerMTok: 2.19},
	"qwq-32b":           {InputPerMTok: 1.2, OutputPerMTok: 1.2},
	"sonnet-3.7-high":   {InputPerMTok: 3, OutputPerMTok: 15},
	"gemini-2.5-pro":    {InputPerMTok: 1.25, OutputPerMTok: 2.5},
	"llama_405":         {InputPerMTok: 3.5, OutputPerMTok: 3.5},
	"llama_70":          {InputPerMTok: 0.88, OutputPerMTok: 0.88},
	"llama4_maverick":   {InputPerMTok: 0.27, OutputPerMTok: 0.85},
	"gemma3":            {InputPerMTok: 0.3, OutputPerMTok: 0.3},

	"text-embedding-3-large": {InputPerMTok: 0.13},
	"text-embedding-3-small": {InputPerMTok: 0.02},
}

// Pricing returns the rate entry for a model, reporting whether it is known.
func Pricing(model string) (ModelPricing, bool) {
	p, ok := pricingTable[model]
	return p, ok
}

// Cost returns the USD cost of the given usage under the model's rates.
// Unknown models cost zero.
func Cost(model string, usage Usage) float64 {
	p, ok := pricingTable[model]
	if !ok {
		return 0
	}
	input := float64(usage.PromptTokens) / 1e6 * p.InputPerMTok
	output := float64(usage.CompletionTokens) / 1e6 * p.OutputPerMTok
	return input + output
}

// EmbeddingCost returns the USD cost of embedding the given token count.
func EmbeddingCost(model string, tokens int) float64 {
	p, ok := pricingTable[model]
	if !ok {
		return 0
	}
	return float64(tokens) / 1e6 * p.InputPerMTok
}
