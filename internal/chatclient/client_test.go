package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acornak/healthcare-chatbot/internal/conversation"
	"github.com/acornak/healthcare-chatbot/internal/observability"
)

func TestSend(t *testing.T) {
	var got map[string]json.RawMessage
	var gotCorrelationID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		gotCorrelationID = r.Header.Get(observability.CorrelationIDHeader)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"message":"MUDr. Novák"}`)
	}))
	defer srv.Close()

	history := conversation.Transcript{
		conversation.NewUserTurn("ortopéd"),
		conversation.NewAssistantTurn("Kde sa nachádzate?"),
	}
	answer, err := New(srv.URL, 5*time.Second).Send(context.Background(), "Košice", history)
	require.NoError(t, err)

	assert.True(t, answer.OK())
	assert.Equal(t, "MUDr. Novák", answer.Message)
	assert.Equal(t, gotCorrelationID, answer.CorrelationID)
	assert.JSONEq(t, `"Košice"`, string(got["message"]))
	assert.JSONEq(t, `[{"role":"user","content":"ortopéd"},{"role":"assistant","content":"Kde sa nachádzate?"}]`, string(got["conversation"]))
}

func TestSend_OmitsEmptyHistory(t *testing.T) {
	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Send(context.Background(), "ahoj", nil)
	require.NoError(t, err)
	_, present := got["conversation"]
	assert.False(t, present)
}

func TestSend_ErrorStatusWithMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"Exceeded maximum operation depth."}`)
	}))
	defer srv.Close()

	answer, err := New(srv.URL, time.Second).Send(context.Background(), "ahoj", nil)
	require.NoError(t, err)
	assert.False(t, answer.OK())
	assert.Equal(t, http.StatusInternalServerError, answer.StatusCode)
	assert.Equal(t, "Exceeded maximum operation depth.", answer.Message)
}

func TestSend_NoMessage(t *testing.T) {
	for _, body := range []string{`<html></html>`, `{}`, `{"error":"x"}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, body)
		}))

		_, err := New(srv.URL, time.Second).Send(context.Background(), "ahoj", nil)
		assert.True(t, errors.Is(err, ErrNoMessage), "body %q: %v", body, err)
		srv.Close()
	}
}

func TestSend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).Send(context.Background(), "ahoj", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoMessage))
}
