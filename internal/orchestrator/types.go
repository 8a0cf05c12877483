package orchestrator

import "errors"

var (
	// ErrEmptyMessage is returned for a missing or blank user message
	ErrEmptyMessage = errors.New("empty message")

	// ErrMissingAPIKey is returned when no LLM credential is configured.
	// Callers surface it as a soft failure, not a server error.
	ErrMissingAPIKey = errors.New("OpenAI API key not set")

	// ErrInvalidUpstreamResponse is returned when the LLM answer has no usable choice
	ErrInvalidUpstreamResponse = errors.New("invalid response from OpenAI")

	// ErrMaxDepthExceeded is returned when the function-call loop does not converge
	ErrMaxDepthExceeded = errors.New("exceeded maximum operation depth")
)

// Reply is the final answer to a user message
type Reply struct {
	// Message is the LLM's final content, unmodified
	Message string
	// Rounds is the number of chat-completion calls made
	Rounds int
	// FunctionsCalled lists the short names invoked, in order
	FunctionsCalled []string
}
