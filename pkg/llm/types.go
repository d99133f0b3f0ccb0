// Package llm provides an OpenAI-compatible provider client for chat
// completions and text embeddings, plus a batched runner that merges cached
// responses with fresh concurrent calls.
package llm

// Role values for chat messages.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat message in a prompt sequence.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is an ordered message sequence submitted as one completion request.
type Prompt []Message

// Usage carries token counts reported by the provider for one request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Completion is the provider's response to a chat request. Reasoning holds
// the model's thinking content when the provider surfaces it separately,
// empty otherwise.
type Completion struct {
	Content   string `json:"content"`
	Reasoning string `json:"reasoning,omitempty"`
	Usage     Usage  `json:"usage"`
}

// Options carries generation parameters for chat requests.
type Options struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Seed        *int    `json:"seed,omitempty"`
}

// DefaultOptions returns deterministic generation settings: temperature 0,
// 4096 max tokens, fixed seed.
func DefaultOptions() Options {
	seed := 42
	return Options{
		Temperature: 0,
		MaxTokens:   4096,
		Seed:        &seed,
	}
}
