package advisor

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/model"
)

// ReportContext tells the chat backend which report the user is asking about.
type ReportContext struct {
	Role          string `json:"role,omitempty"`
	GuName        string `json:"gu_name,omitempty"`
	Region        string `json:"region,omitempty"`
	CategoryLarge string `json:"category_large,omitempty"`
	CategorySmall string `json:"category_small,omitempty"`
	Purpose       string `json:"purpose,omitempty"`
	ReportText    string `json:"report_text,omitempty"`
}

// Conversation is a chat history that opens with the bot's greeting.
type Conversation struct {
	client *Client
	rc     ReportContext

	// send serializes Send calls so each posts the history it extends.
	send sync.Mutex

	mu       sync.Mutex
	messages []model.ChatMessage
}

// NewConversation starts a conversation about rc.
func NewConversation(c *Client, rc ReportContext) *Conversation {
	return &Conversation{
		client:   c,
		rc:       rc,
		messages: []model.ChatMessage{{Role: model.RoleBot, Content: model.Greeting}},
	}
}

// Messages returns a copy of the history.
func (cv *Conversation) Messages() []model.ChatMessage {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return append([]model.ChatMessage(nil), cv.messages...)
}

// Send appends the user's text, posts the full history and appends the
// reply. Blank text is ignored. On failure the user's message stays in the
// history and the error is returned.
func (cv *Conversation) Send(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	cv.send.Lock()
	defer cv.send.Unlock()

	cv.mu.Lock()
	cv.messages = append(cv.messages, model.ChatMessage{Role: model.RoleUser, Content: text})
	history := append([]model.ChatMessage(nil), cv.messages...)
	cv.mu.Unlock()

	reply, err := cv.client.Chat(ctx, model.ChatRequest{
		Messages:      history,
		Role:          cv.rc.Role,
		GuName:        cv.rc.GuName,
		Region:        cv.rc.Region,
		CategoryLarge: cv.rc.CategoryLarge,
		CategorySmall: cv.rc.CategorySmall,
		Purpose:       cv.rc.Purpose,
		ReportText:    cv.rc.ReportText,
	})
	if err != nil {
		if !fetcher.IsCancelled(err) {
			zap.L().Warn("chat: send failed", zap.Int("history", len(history)), zap.Error(err))
		}
		return "", err
	}

	cv.mu.Lock()
	cv.messages = append(cv.messages, model.ChatMessage{Role: model.RoleBot, Content: reply})
	cv.mu.Unlock()
	return reply, nil
}
