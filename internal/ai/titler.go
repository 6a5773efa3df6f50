package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Vovarama1992/rental-support-bridge/internal/support"
)

// maxTitleLen is counted in runes.
const maxTitleLen = 80

// Titler names escalated conversations using the model.
type Titler struct {
	ai AI
}

func NewTitler(ai AI) *Titler {
	return &Titler{ai: ai}
}

func (t *Titler) Title(ctx context.Context, userType support.UserType, history []support.Message) (string, error) {
	msgs := make([]Message, 0, len(history)+2)
	msgs = append(msgs,
		Message{Role: "system", Text: TitlePrompt},
		Message{Role: "system", Text: "visitor type: " + string(userType)},
	)
	for _, m := range history {
		role := "user"
		if m.Type != support.MessageUser {
			role = "assistant"
		}
		msgs = append(msgs, Message{Role: role, Text: m.Content})
	}

	raw, err := t.ai.GetReply(ctx, msgs)
	if err != nil {
		return "", err
	}

	var resp struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err != nil {
		return "", fmt.Errorf("parse title response: %w", err)
	}

	title := strings.TrimSpace(resp.Title)
	if r := []rune(title); len(r) > maxTitleLen {
		title = strings.TrimSpace(string(r[:maxTitleLen]))
	}
	return title, nil
}

var _ support.Titler = (*Titler)(nil)
