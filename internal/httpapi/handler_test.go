package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acornak/healthcare-chatbot/internal/conversation"
	"github.com/acornak/healthcare-chatbot/internal/observability"
	"github.com/acornak/healthcare-chatbot/internal/orchestrator"
)

type fakeAnswerer struct {
	reply *orchestrator.Reply
	err   error

	called        bool
	text          string
	prior         conversation.Transcript
	correlationID string
}

func (f *fakeAnswerer) HandleUserMessage(ctx context.Context, text string, prior conversation.Transcript) (*orchestrator.Reply, error) {
	f.called = true
	f.text = text
	f.prior = prior
	f.correlationID = observability.CorrelationIDFromContext(ctx)
	return f.reply, f.err
}

func do(t *testing.T, h http.Handler, method, body string) (*httptest.ResponseRecorder, ChatResponse) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/chatbot", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandleChat_Success(t *testing.T) {
	fake := &fakeAnswerer{reply: &orchestrator.Reply{Message: "MUDr. Novák, Košice", Rounds: 2}}
	rec, resp := do(t, HandleChat(fake), http.MethodPost, `{"message":"ortopéd Košice"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "MUDr. Novák, Košice", resp.Message)
	assert.Equal(t, "ortopéd Košice", fake.text)
	assert.Nil(t, fake.prior)
	assert.NotEmpty(t, rec.Header().Get(observability.CorrelationIDHeader))
	assert.Equal(t, rec.Header().Get(observability.CorrelationIDHeader), fake.correlationID)
}

func TestHandleChat_ForwardsConversation(t *testing.T) {
	fake := &fakeAnswerer{reply: &orchestrator.Reply{Message: "ok"}}
	body := `{"message":"Košice","conversation":[{"role":"user","content":"ortopéd"},{"role":"assistant","content":"Kde?"}]}`
	rec, _ := do(t, HandleChat(fake), http.MethodPost, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fake.prior, 2)
	assert.Equal(t, conversation.RoleUser, fake.prior[0].Role)
	assert.Equal(t, "Kde?", fake.prior[1].Text())
}

func TestHandleChat_KeepsCallerCorrelationID(t *testing.T) {
	fake := &fakeAnswerer{reply: &orchestrator.Reply{Message: "ok"}}
	req := httptest.NewRequest(http.MethodPost, "/api/chatbot", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set(observability.CorrelationIDHeader, "abc-123")
	rec := httptest.NewRecorder()

	HandleChat(fake).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(observability.CorrelationIDHeader))
	assert.Equal(t, "abc-123", fake.correlationID)
}

func TestHandleChat_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"empty message", orchestrator.ErrEmptyMessage, http.StatusBadRequest, MsgBadRequest},
		{"invalid transcript", fmt.Errorf("turn 0: %w", conversation.ErrInvalidTranscript), http.StatusBadRequest, MsgBadRequest},
		{"missing api key", orchestrator.ErrMissingAPIKey, http.StatusOK, MsgMissingAPIKey},
		{"depth exceeded", orchestrator.ErrMaxDepthExceeded, http.StatusInternalServerError, MsgMaxDepthExceeded},
		{"invalid upstream", fmt.Errorf("%w: no choices", orchestrator.ErrInvalidUpstreamResponse), http.StatusInternalServerError, MsgInternalError},
		{"anything else", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, MsgInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnswerer{err: tt.err}
			rec, resp := do(t, HandleChat(fake), http.MethodPost, `{"message":"hi"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestHandleChat_MalformedBody(t *testing.T) {
	for _, body := range []string{"", "not json", `{"message": 12}`, `{"conversation": "x"}`} {
		fake := &fakeAnswerer{}
		rec, resp := do(t, HandleChat(fake), http.MethodPost, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, MsgBadRequest, resp.Message)
		assert.False(t, fake.called)
	}
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	fake := &fakeAnswerer{}
	rec, resp := do(t, HandleChat(fake), http.MethodGet, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, MsgMethodNotAllowed, resp.Message)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	assert.False(t, fake.called)
}
