package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is a type alias for message role strings.
// Using alias (=) instead of a new type so existing "user"/"assistant"
// literals remain assignable without conversion.
type Role = string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one chat turn in a project's history. Append-only; never
// mutated after creation.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// ToolCalls records the invocations an assistant turn executed.
	ToolCalls []ToolInvocationRecord `json:"tool_calls,omitempty"`
}

// ToolInvocationRecord is the per-call audit entry embedded in the assistant
// message that triggered it.
type ToolInvocationRecord struct {
	Tool       string         `json:"tool"`
	Args       map[string]any `json:"args"`
	Success    bool           `json:"success"`
	Summary    string         `json:"summary,omitempty"`
	OutputPath string         `json:"output_path,omitempty"`
	OutputURL  string         `json:"output_url,omitempty"`
}

// NewUserMessage creates a user turn.
func NewUserMessage(text string) Message {
	return Message{ID: uuid.New(), Role: RoleUser, Text: text, CreatedAt: time.Now()}
}

// NewAssistantMessage creates an assistant turn with its invocation records.
func NewAssistantMessage(text string, calls []ToolInvocationRecord) Message {
	return Message{ID: uuid.New(), Role: RoleAssistant, Text: text, CreatedAt: time.Now(), ToolCalls: calls}
}
