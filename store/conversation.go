package store

import "encoding/json"

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "USER"
	MessageRoleAssistant MessageRole = "ASSISTANT"
)

// Message is a single entry of a conversation log. The assistant message
// created for the current turn is the only entity mutated after creation:
// its Content is rewritten in place while the answer is being revealed.
type Message struct {
	UID       string          `json:"uid"`
	Role      MessageRole     `json:"role"`
	Content   string          `json:"content"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedTs int64           `json:"createdTs"`
}

// IsAssistant reports whether the message was produced by the assistant.
func (m *Message) IsAssistant() bool {
	return m.Role == MessageRoleAssistant
}

// ConversationLog is the persisted message window of one conversation,
// identified by a key derived from the authenticated identity.
type ConversationLog struct {
	Key       string    `json:"key"`
	Messages  []Message `json:"messages"`
	UpdatedTs int64     `json:"updatedTs"`
}
