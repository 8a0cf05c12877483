// Package httpapi exposes the Orchestrator over HTTP and maps its outcomes
// onto status codes and {message} bodies.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acornak/healthcare-chatbot/internal/conversation"
	"github.com/acornak/healthcare-chatbot/internal/observability"
	"github.com/acornak/healthcare-chatbot/internal/orchestrator"
)

const maxRequestBody = 1 << 20

// Response messages returned to the chat client
const (
	MsgBadRequest       = "Bad request"
	MsgMissingAPIKey    = "Error: OpenAI API key not set"
	MsgInternalError    = "Internal Server Error"
	MsgMaxDepthExceeded = "Exceeded maximum operation depth."
	MsgMethodNotAllowed = "Method not allowed"
)

// ChatRequest is the inbound body
type ChatRequest struct {
	Message      string                  `json:"message"`
	Conversation conversation.Transcript `json:"conversation,omitempty"`
}

// ChatResponse is the body of every answer
type ChatResponse struct {
	Message string `json:"message"`
}

// Answerer answers one user message
type Answerer interface {
	HandleUserMessage(ctx context.Context, text string, prior conversation.Transcript) (*orchestrator.Reply, error)
}

// HandleChat returns the handler for POST /api/chatbot
func HandleChat(answerer Answerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		correlationID := observability.CorrelationIDFromRequest(r)
		logger := observability.WithCorrelationID(correlationID)
		w.Header().Set(observability.CorrelationIDHeader, correlationID)

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeMessage(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
			return
		}

		var req ChatRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			logger.Warn().Err(err).Msg("Malformed chat request")
			writeMessage(w, http.StatusBadRequest, MsgBadRequest)
			return
		}

		ctx := observability.ContextWithCorrelationID(r.Context(), correlationID)
		ctx = observability.ContextWithLogger(ctx, logger)

		logger.Debug().
			Str("message", req.Message).
			Int("prior_turns", len(req.Conversation)).
			Msg("Chat request received")

		reply, err := answerer.HandleUserMessage(ctx, req.Message, req.Conversation)
		status, message := outcome(reply, err)
		writeMessage(w, status, message)
	}
}

func outcome(reply *orchestrator.Reply, err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusOK, reply.Message
	case errors.Is(err, orchestrator.ErrEmptyMessage), errors.Is(err, conversation.ErrInvalidTranscript):
		return http.StatusBadRequest, MsgBadRequest
	case errors.Is(err, orchestrator.ErrMissingAPIKey):
		return http.StatusOK, MsgMissingAPIKey
	case errors.Is(err, orchestrator.ErrMaxDepthExceeded):
		return http.StatusInternalServerError, MsgMaxDepthExceeded
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ChatResponse{Message: message})
}
