package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Vovarama1992/rental-support-bridge/internal/support"
)

type Meta struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Source     string    `json:"source"`
}

// Envelope is the wire shape of every lifecycle event.
type Envelope struct {
	Meta Meta                 `json:"meta"`
	Data support.Notification `json:"data"`
}

const source = "rental-support-bridge"

func NewEnvelope(eventType string, n support.Notification) Envelope {
	return Envelope{
		Meta: Meta{
			ID:         uuid.NewString(),
			Type:       eventType,
			OccurredAt: time.Now().UTC(),
			Source:     source,
		},
		Data: n,
	}
}
