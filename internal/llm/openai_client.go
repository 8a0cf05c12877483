package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/acornak/healthcare-chatbot/internal/config"
	"github.com/acornak/healthcare-chatbot/internal/conversation"
	"github.com/acornak/healthcare-chatbot/internal/observability"
	"github.com/acornak/healthcare-chatbot/internal/registry"
	"github.com/acornak/healthcare-chatbot/internal/resilience"
)

const breakerName = "llm"

// OpenAIClient implements Client using the OpenAI chat-completions API
type OpenAIClient struct {
	client         *openai.Client
	model          string
	timeout        time.Duration
	circuitBreaker *resilience.CircuitBreaker
}

// NewOpenAIClient creates a new OpenAI chat-completion client.
// cfg.OpenAIURL is used as the API base URL.
func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	clientConfig.BaseURL = cfg.OpenAIURL
	clientConfig.HTTPClient = &http.Client{}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.OpenAIModel,
		timeout: cfg.LLMRequestTimeout(),
		circuitBreaker: resilience.NewCircuitBreaker(
			breakerName,
			cfg.CircuitBreakerMaxFailures,
			time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second,
		),
	}
}

// Complete implements Client
func (c *OpenAIClient) Complete(
	ctx context.Context,
	transcript conversation.Transcript,
	functions []registry.Descriptor,
) (*Reply, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  toMessages(transcript),
		Functions: toFunctionDefinitions(functions),
	}

	var resp openai.ChatCompletionResponse
	err := c.circuitBreaker.Call(func() error {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		var callErr error
		resp, callErr = c.client.CreateChatCompletion(callCtx, req)
		return callErr
	}, isCallerCancellation(ctx))

	state := c.circuitBreaker.GetState()
	observability.UpdateCircuitBreakerState(c.circuitBreaker.Name(), int(state))
	if err != nil {
		switch {
		case errors.Is(err, resilience.ErrCircuitOpen):
			observability.LoggerFromContext(ctx).Warn().
				Str("breaker", c.circuitBreaker.Name()).
				Str("state", state.String()).
				Msg("Upstream call rejected by circuit breaker")
		case ctx.Err() == nil:
			observability.IncrementCircuitBreakerFailures(c.circuitBreaker.Name())
		}
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return replyFromResponse(resp)
}

func replyFromResponse(resp openai.ChatCompletionResponse) (*Reply, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}

	choice := resp.Choices[0]
	msg := choice.Message
	if msg.Role == "" && msg.Content == "" && msg.FunctionCall == nil && len(msg.ToolCalls) == 0 {
		return nil, fmt.Errorf("%w: choice has no message", ErrInvalidResponse)
	}

	reply := &Reply{
		Content:      msg.Content,
		FinishReason: string(choice.FinishReason),
	}
	if msg.FunctionCall != nil {
		if msg.FunctionCall.Name == "" {
			return nil, fmt.Errorf("%w: function call without name", ErrInvalidResponse)
		}
		reply.FunctionCall = &conversation.FunctionCall{
			Name:      msg.FunctionCall.Name,
			Arguments: msg.FunctionCall.Arguments,
		}
	}

	return reply, nil
}

func toMessages(transcript conversation.Transcript) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(transcript))
	for _, turn := range transcript {
		msg := openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Text(),
			Name:    turn.Name,
		}
		if turn.FunctionCall != nil {
			msg.FunctionCall = &openai.FunctionCall{
				Name:      turn.FunctionCall.Name,
				Arguments: turn.FunctionCall.Arguments,
			}
		}
		messages = append(messages, msg)
	}
	return messages
}

func toFunctionDefinitions(descriptors []registry.Descriptor) []openai.FunctionDefinition {
	if len(descriptors) == 0 {
		return nil
	}

	defs := make([]openai.FunctionDefinition, 0, len(descriptors))
	for _, d := range descriptors {
		def := openai.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil {
			def.Parameters = d.Parameters
		}
		defs = append(defs, def)
	}
	return defs
}

// isCallerCancellation keeps a client hanging up from tripping the breaker
func isCallerCancellation(ctx context.Context) func(error) bool {
	return func(error) bool {
		return ctx.Err() != nil
	}
}
