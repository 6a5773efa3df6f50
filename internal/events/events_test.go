package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/rental-support-bridge/internal/support"
)

func sampleNotification() support.Notification {
	return support.Notification{
		ID:       "c-1",
		UserID:   "u-1",
		UserType: support.UserTenant,
		Status:   support.StatusPending,
		Title:    "Tenant support request",
		Messages: []support.Message{
			{ID: "m-1", Type: support.MessageUser, Content: "I need maintenance repair"},
		},
	}
}

func TestWebhookPublisher_Publish(t *testing.T) {
	var (
		gotHeader http.Header
		gotBody   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, "s3cret")
	err := p.Publish(context.Background(), support.EventNotificationCreated, sampleNotification())
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, support.EventNotificationCreated, gotHeader.Get("X-Event-Type"))
	assert.Equal(t, "s3cret", gotHeader.Get("X-Webhook-Secret"))

	var env Envelope
	require.NoError(t, json.Unmarshal(gotBody, &env))
	assert.Equal(t, support.EventNotificationCreated, env.Meta.Type)
	assert.NotEmpty(t, env.Meta.ID)
	assert.Equal(t, "c-1", env.Data.ID)
	assert.Len(t, env.Data.Messages, 1)
}

func TestWebhookPublisher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookPublisher(srv.URL, "").Publish(context.Background(), support.EventNotificationUpdated, sampleNotification())
	assert.ErrorContains(t, err, "502")
}

type stubPublisher struct {
	calls int
	err   error
}

func (s *stubPublisher) Publish(context.Context, string, support.Notification) error {
	s.calls++
	return s.err
}

func TestMulti_PublishesToAll(t *testing.T) {
	a := &stubPublisher{err: errors.New("a down")}
	b := &stubPublisher{}

	err := Multi{a, b}.Publish(context.Background(), support.EventNotificationResolved, sampleNotification())

	assert.EqualError(t, err, "a down")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestBuildPublishing(t *testing.T) {
	env := NewEnvelope(support.EventNotificationCreated, sampleNotification())

	msg, err := buildPublishing(env)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, env.Meta.ID, msg.MessageId)
	assert.Equal(t, "c-1", msg.CorrelationId)
	assert.Equal(t, support.EventNotificationCreated, msg.Type)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, env.Meta.ID, decoded.Meta.ID)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, backoff(time.Second, 1))
	assert.Equal(t, 4*time.Second, backoff(time.Second, 3))
	assert.Equal(t, maxDialDelay, backoff(time.Second, 10))
}
