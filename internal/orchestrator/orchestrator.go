// Package orchestrator runs the function-call loop between the LLM and the
// backend for a single user message.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/acornak/healthcare-chatbot/internal/backend"
	"github.com/acornak/healthcare-chatbot/internal/config"
	"github.com/acornak/healthcare-chatbot/internal/conversation"
	"github.com/acornak/healthcare-chatbot/internal/llm"
	"github.com/acornak/healthcare-chatbot/internal/observability"
	"github.com/acornak/healthcare-chatbot/internal/registry"
)

// Orchestrator answers user messages by alternating LLM calls and backend calls
type Orchestrator struct {
	llm          llm.Client
	registry     *registry.Registry
	backend      backend.Caller
	maxRounds    int
	systemPrompt string
	hasAPIKey    bool
}

// New creates an Orchestrator. Each request owns its own transcript; the
// Orchestrator itself holds no per-request state and is safe for concurrent use.
func New(cfg *config.Config, llmClient llm.Client, reg *registry.Registry, caller backend.Caller) *Orchestrator {
	return &Orchestrator{
		llm:          llmClient,
		registry:     reg,
		backend:      caller,
		maxRounds:    cfg.MaxFunctionRounds,
		systemPrompt: cfg.SystemPrompt,
		hasAPIKey:    cfg.HasLLMCredentials(),
	}
}

// HandleUserMessage answers text, continuing the conversation in prior.
// prior is replayed verbatim ahead of the new user turn.
func (o *Orchestrator) HandleUserMessage(ctx context.Context, text string, prior conversation.Transcript) (*Reply, error) {
	logger := observability.LoggerFromContext(ctx)
	metrics := observability.NewRequestMetrics(observability.CorrelationIDFromContext(ctx))

	reply, status, err := o.handle(ctx, text, prior, metrics)

	rounds := 0
	if reply != nil {
		rounds = reply.Rounds
	}
	metrics.RecordRequestEnd(status, rounds)

	switch status {
	case "ok":
		logger.Info().
			Int("rounds", reply.Rounds).
			Strs("functions", reply.FunctionsCalled).
			Msg("Chat request answered")
	case "bad_request", "misconfigured":
		logger.Warn().Err(err).Msg("Chat request rejected")
	default:
		metrics.RecordError(status, "orchestrator")
		logger.Error().Err(err).Int("rounds", rounds).Msg("Chat request failed")
	}

	return reply, err
}

func (o *Orchestrator) handle(
	ctx context.Context,
	text string,
	prior conversation.Transcript,
	metrics *observability.Metrics,
) (*Reply, string, error) {
	logger := observability.LoggerFromContext(ctx)

	if strings.TrimSpace(text) == "" {
		return nil, "bad_request", ErrEmptyMessage
	}
	if !o.hasAPIKey {
		return nil, "misconfigured", ErrMissingAPIKey
	}

	transcript, err := conversation.New(o.systemPrompt, prior, text)
	if err != nil {
		return nil, "bad_request", err
	}

	descriptors := o.registry.Descriptors()
	reply := &Reply{}

	for round := 1; round <= o.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return reply, "error", fmt.Errorf("request aborted before round %d: %w", round, err)
		}

		reply.Rounds = round
		metrics.RecordLLMStart()
		answer, err := o.llm.Complete(ctx, transcript, descriptors)
		metrics.RecordLLMEnd(err == nil)
		if err != nil {
			if errors.Is(err, llm.ErrInvalidResponse) {
				return reply, "error", fmt.Errorf("%w: %v", ErrInvalidUpstreamResponse, err)
			}
			return reply, "error", fmt.Errorf("round %d: %w", round, err)
		}

		if !answer.IsFunctionCall() {
			reply.Message = answer.Content
			return reply, "ok", nil
		}

		call := *answer.FunctionCall
		transcript = transcript.Append(conversation.NewFunctionCallTurn(call))

		path, err := o.registry.Resolve(call.Name)
		if err != nil {
			return reply, "error", fmt.Errorf("round %d: %w", round, err)
		}

		logger.Debug().
			Int("round", round).
			Str("function", call.Name).
			Str("path", path).
			Str("arguments", call.Arguments).
			Msg("Calling backend function")

		start := time.Now()
		result, err := o.backend.Call(ctx, path, call.Arguments)
		metrics.RecordFunctionCall(call.Name, time.Since(start), err == nil && result.OK())
		if err != nil {
			return reply, "error", fmt.Errorf("round %d: %w", round, err)
		}
		if !result.OK() {
			logger.Warn().
				Str("function", call.Name).
				Int("status", result.StatusCode).
				Msg("Backend returned an error body, relaying it to the LLM")
		}

		reply.FunctionsCalled = append(reply.FunctionsCalled, call.Name)
		transcript = transcript.Append(conversation.NewFunctionResultTurn(call.Name, string(result.Body)))
	}

	return reply, "depth_exceeded", ErrMaxDepthExceeded
}
