package ai

import "context"

// AI is the external model; it knows nothing about support chats or storage.
type AI interface {
	GetReply(ctx context.Context, history []Message) (string, error)
}

// Message is the provider-neutral dialogue format.
type Message struct {
	Role string // "user" | "assistant" | "system"
	Text string
}
