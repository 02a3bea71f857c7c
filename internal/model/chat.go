package model

// Chat roles.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Greeting opens every conversation.
const Greeting = "안녕하세요! 무엇을 도와드릴까요?"

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ChatRequest is the body posted to the chat endpoint: the whole history plus
// the report context the conversation is about.
type ChatRequest struct {
	Messages      []ChatMessage `json:"messages"`
	Role          string        `json:"role,omitempty"`
	GuName        string        `json:"gu_name,omitempty"`
	Region        string        `json:"region,omitempty"`
	CategoryLarge string        `json:"category_large,omitempty"`
	CategorySmall string        `json:"category_small,omitempty"`
	Purpose       string        `json:"purpose,omitempty"`
	ReportText    string        `json:"report_text,omitempty"`
}
