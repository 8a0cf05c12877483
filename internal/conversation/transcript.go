// Package conversation models the transcript exchanged with the LLM during
// a single chat request. Transcripts are append-only and never persisted.
package conversation

import "fmt"

// Transcript is an ordered list of turns
type Transcript []Turn

// New seeds a transcript from the client-supplied prior turns and the new user
// message. The system prompt only opens fresh transcripts so that replayed
// turns reach the LLM unchanged. prior is copied, never aliased.
func New(systemPrompt string, prior Transcript, message string) (Transcript, error) {
	if err := prior.Validate(); err != nil {
		return nil, err
	}

	t := make(Transcript, 0, len(prior)+2)
	if systemPrompt != "" && len(prior) == 0 {
		t = append(t, NewSystemTurn(systemPrompt))
	}
	t = append(t, prior...)
	t = append(t, NewUserTurn(message))
	return t, nil
}

// Validate checks every turn
func (t Transcript) Validate() error {
	for i, turn := range t {
		if err := turn.Validate(); err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return nil
}

// Append returns t with turns added
func (t Transcript) Append(turns ...Turn) Transcript {
	return append(t, turns...)
}
