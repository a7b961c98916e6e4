package driven

import "context"

// LLMService synthesizes natural-language answers from retrieved
// context. This is an optional service - when nil, question answering
// fails with domain.ErrNotConfigured while ingestion keeps working.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Any OpenAI-compatible chat completion endpoint
type LLMService interface {
	// Answer produces a grounded answer to the question using only the
	// supplied context. The implementation applies the grounding
	// contract: answer from context alone, flag insufficient context,
	// emit a trailing sources list keyed by path and chunk index.
	Answer(ctx context.Context, question, contextText string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
