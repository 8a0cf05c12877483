package conversation

import (
	"errors"
	"fmt"
)

// ErrInvalidTranscript is returned when a client-supplied transcript cannot be replayed
var ErrInvalidTranscript = errors.New("invalid transcript")

// Role identifies who produced a turn
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// Valid reports whether r is a role the chat-completion API accepts here
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleFunction:
		return true
	}
	return false
}

// FunctionCall is the LLM's directive to invoke a registered function.
// Arguments is the raw JSON string produced by the model.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Turn is one entry of a transcript. Content is nil for assistant turns
// that only carry a function call.
type Turn struct {
	Role         Role          `json:"role"`
	Content      *string       `json:"content"`
	Name         string        `json:"name,omitempty"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// Text returns the content or "" when it is null
func (t Turn) Text() string {
	if t.Content == nil {
		return ""
	}
	return *t.Content
}

// Validate checks the invariants of a single turn
func (t Turn) Validate() error {
	if !t.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidTranscript, t.Role)
	}
	if t.FunctionCall != nil {
		if t.Role != RoleAssistant {
			return fmt.Errorf("%w: function_call on %s turn", ErrInvalidTranscript, t.Role)
		}
		if t.FunctionCall.Name == "" {
			return fmt.Errorf("%w: function_call without name", ErrInvalidTranscript)
		}
	}
	if t.Role == RoleFunction && t.Name == "" {
		return fmt.Errorf("%w: function turn without name", ErrInvalidTranscript)
	}
	return nil
}

// NewUserTurn creates a user turn
func NewUserTurn(text string) Turn {
	return Turn{Role: RoleUser, Content: &text}
}

// NewSystemTurn creates a system turn
func NewSystemTurn(text string) Turn {
	return Turn{Role: RoleSystem, Content: &text}
}

// NewAssistantTurn creates a plain-text assistant turn
func NewAssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Content: &text}
}

// NewFunctionCallTurn records the LLM's function call; content is null
func NewFunctionCallTurn(call FunctionCall) Turn {
	return Turn{Role: RoleAssistant, FunctionCall: &call}
}

// NewFunctionResultTurn carries a backend result back to the LLM
func NewFunctionResultTurn(name, result string) Turn {
	return Turn{Role: RoleFunction, Name: name, Content: &result}
}
