// Package ai defines the language-model gateway used by the matching
// pipeline: a provider-agnostic Generator, the error taxonomy every provider
// maps its failures onto, and the bounded retry policy shared by providers.
package ai

import "context"

// Generator produces a structured (JSON) completion for a system instruction
// and a user message. Implementations own authentication, retries on
// rate limiting and the shared request budget.
type Generator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Provider names accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)
