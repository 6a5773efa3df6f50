package support

import (
	"time"

	"github.com/google/uuid"

	"github.com/Vovarama1992/rental-support-bridge/internal/apperr"
)

// controller holds the pure conversation state machine. It never touches
// storage; the service persists whatever it returns.
type controller struct {
	now   func() time.Time
	newID func() string
}

func newController() controller {
	return controller{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

type transition struct {
	reply        *Message
	notification *Notification
	created      bool
}

func (c controller) message(t MessageType, content string) Message {
	return Message{
		ID:        c.newID(),
		Type:      t,
		Content:   content,
		Timestamp: c.now(),
	}
}

func (c controller) newSession(userID string) *Session {
	s := &Session{UserID: userID}
	c.reset(s, StateBotHandled)
	return s
}

// reset starts a fresh conversation under a new id.
func (c controller) reset(s *Session, state SessionState) {
	s.ConversationID = c.newID()
	s.UserType = UserUnknown
	s.State = state
	s.NotificationID = ""
	s.Messages = []Message{c.message(MessageBot, GreetingText)}
	s.UpdatedAt = c.now()
}

// userMessage applies one end-user message. existing is the notification the
// session is waiting on, if any.
func (c controller) userMessage(s *Session, existing *Notification, text string) transition {
	if s.State == StateWaitingForHuman && (existing == nil || existing.Status == StatusResolved) {
		// Never write into a resolved conversation; start over instead.
		c.reset(s, StateBotHandled)
	}

	msg := c.message(MessageUser, text)
	s.Messages = append(s.Messages, msg)
	s.UserType = Reclassify(s.UserType, text)
	s.UpdatedAt = msg.Timestamp

	if s.State == StateWaitingForHuman {
		n := existing.clone()
		n.Messages = append(n.Messages, msg)
		if n.Status == StatusPending {
			n.Status = StatusActive
		}
		if n.UserType == UserUnknown {
			n.UserType = s.UserType
		}
		return transition{notification: &n}
	}

	s.State = StateBotHandled

	answer, matched := Respond(text)
	if !matched {
		answer = FallbackText
	}
	reply := c.message(MessageBot, answer)
	s.Messages = append(s.Messages, reply)

	if matched && !Escalates(answer) {
		return transition{reply: &reply}
	}

	n := Notification{
		ID:        s.ConversationID,
		UserID:    s.UserID,
		UserType:  s.UserType,
		Messages:  append([]Message(nil), s.Messages...),
		Status:    StatusPending,
		Timestamp: reply.Timestamp,
		Title:     defaultTitle(s.UserType),
	}
	s.State = StateWaitingForHuman
	s.NotificationID = n.ID
	return transition{reply: &reply, notification: &n, created: true}
}

// employeeMessage appends an employee reply. s may be nil when the end user
// has no live session.
func (c controller) employeeMessage(s *Session, n Notification, text string) (Notification, error) {
	if n.Status == StatusResolved {
		return Notification{}, apperr.NewNotificationResolved(n.ID)
	}

	msg := c.message(MessageEmployee, text)
	n = n.clone()
	n.Messages = append(n.Messages, msg)
	n.Status = StatusActive

	if s != nil && s.ConversationID == n.ID {
		s.Messages = append(s.Messages, msg)
		s.UpdatedAt = msg.Timestamp
	}
	return n, nil
}

// resolve closes n. The widget session that raised it goes back to a fresh
// greeting with an unknown requester type.
func (c controller) resolve(s *Session, n Notification) (Notification, error) {
	if n.Status == StatusResolved {
		return Notification{}, apperr.NewNotificationResolved(n.ID)
	}

	n = n.clone()
	n.Status = StatusResolved

	if s != nil && s.ConversationID == n.ID {
		c.reset(s, StateResolved)
	}
	return n, nil
}

func defaultTitle(t UserType) string {
	switch t {
	case UserTenant:
		return "Tenant support request"
	case UserAgent:
		return "Agent support request"
	default:
		return "Support request"
	}
}
