package llm

import (
	"context"
	"errors"

	"github.com/acornak/healthcare-chatbot/internal/conversation"
	"github.com/acornak/healthcare-chatbot/internal/registry"
)

// ErrInvalidResponse is returned when the provider answers without a usable choice
var ErrInvalidResponse = errors.New("invalid response from LLM provider")

// Reply is the first choice of a chat completion.
// Exactly one of Content or FunctionCall is meaningful: a non-nil
// FunctionCall means the model wants a function invoked.
type Reply struct {
	Content      string
	FunctionCall *conversation.FunctionCall
	FinishReason string
}

// IsFunctionCall reports whether the reply asks for a function call
func (r *Reply) IsFunctionCall() bool {
	return r != nil && r.FunctionCall != nil
}

// Client is a chat-completion provider that supports function calling
type Client interface {
	// Complete sends the whole transcript and the advertised functions and
	// returns the model's first choice
	Complete(ctx context.Context, transcript conversation.Transcript, functions []registry.Descriptor) (*Reply, error)
}
