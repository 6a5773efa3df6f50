package support

import (
	"context"
	"time"
)

type MessageType string

const (
	MessageUser     MessageType = "user"
	MessageBot      MessageType = "bot"
	MessageEmployee MessageType = "employee"
)

type UserType string

const (
	UserTenant  UserType = "tenant"
	UserAgent   UserType = "agent"
	UserUnknown UserType = "unknown"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusResolved Status = "resolved"
)

// SessionState is the widget-side conversation state.
type SessionState string

const (
	StateBotHandled      SessionState = "bot-handled"
	StateWaitingForHuman SessionState = "waiting-for-human"
	StateResolved        SessionState = "resolved"
)

// ResolveSentinel is sent by the employee console instead of a chat message
// to close a conversation.
const ResolveSentinel = "__RESOLVED__"

type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// Notification is a support request waiting for, or handled by, an employee.
// ID equals the id of the conversation that raised it.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserType  UserType  `json:"user_type"`
	Messages  []Message `json:"messages"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
}

func (n Notification) clone() Notification {
	out := n
	out.Messages = append([]Message(nil), n.Messages...)
	return out
}

// Session is the per end-user chat state.
type Session struct {
	UserID         string       `json:"user_id"`
	ConversationID string       `json:"conversation_id"`
	UserType       UserType     `json:"user_type"`
	State          SessionState `json:"state"`
	Messages       []Message    `json:"messages"`
	NotificationID string       `json:"notification_id,omitempty"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (s *Session) clone() *Session {
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	return &out
}

type Counts struct {
	Pending  int `json:"pending"`
	Active   int `json:"active"`
	Resolved int `json:"resolved"`
	Total    int `json:"total"`
}

// Reply is the outcome of one end-user message.
type Reply struct {
	ConversationID string       `json:"conversation_id"`
	State          SessionState `json:"state"`
	UserType       UserType     `json:"user_type"`
	Reply          *Message     `json:"reply,omitempty"`
	NotificationID string       `json:"notification_id,omitempty"`
}

// Repo persists notifications.
type Repo interface {
	SaveNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context) ([]Notification, error)
}

// SessionStore keeps widget sessions by user id.
type SessionStore interface {
	Get(ctx context.Context, userID string) (*Session, bool, error)
	Save(ctx context.Context, s *Session) error
}

// Publisher fans notification lifecycle changes out to other systems.
type Publisher interface {
	Publish(ctx context.Context, eventType string, n Notification) error
}

// Titler produces a short title for a freshly escalated notification.
type Titler interface {
	Title(ctx context.Context, userType UserType, history []Message) (string, error)
}

type Service interface {
	HandleUserMessage(ctx context.Context, userID, text string) (*Reply, error)
	GetSession(ctx context.Context, userID string) (*Session, error)
	Respond(ctx context.Context, notificationID, text string) (Notification, error)
	Resolve(ctx context.Context, notificationID string) (Notification, error)
	Notifications() []Notification
	Notification(id string) (Notification, error)
	Counts() Counts
	Close()
}
