package support

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Vovarama1992/rental-support-bridge/internal/apperr"
	"github.com/Vovarama1992/rental-support-bridge/internal/logger"
	"github.com/Vovarama1992/rental-support-bridge/internal/metrics"
)

// titleTimeout bounds a background title request.
const titleTimeout = 30 * time.Second

const (
	EventNotificationCreated  = "support.notification.created"
	EventNotificationUpdated  = "support.notification.updated"
	EventNotificationResolved = "support.notification.resolved"
)

type service struct {
	// mu serializes every session and notification mutation so each event
	// runs to completion before the next one starts.
	mu sync.Mutex

	store     *Store
	sessions  SessionStore
	repo      Repo
	publisher Publisher
	titler    Titler
	log       logger.Logger
	botDelay  time.Duration
	ctrl      controller

	outbox *outbox
	titles sync.WaitGroup
}

type Option func(*service)

func WithRepo(r Repo) Option { return func(s *service) { s.repo = r } }

func WithPublisher(p Publisher) Option { return func(s *service) { s.publisher = p } }

func WithTitler(t Titler) Option { return func(s *service) { s.titler = t } }

// WithBotDelay sets the latency applied before a bot reply is returned.
func WithBotDelay(d time.Duration) Option { return func(s *service) { s.botDelay = d } }

func NewService(store *Store, sessions SessionStore, log logger.Logger, opts ...Option) Service {
	s := &service{
		store:    store,
		sessions: sessions,
		log:      log,
		ctrl:     newController(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher != nil {
		s.outbox = newOutbox(s.publisher, s.log)
	}
	return s
}

// Hydrate loads persisted notifications into the store.
func Hydrate(ctx context.Context, repo Repo, store *Store) (int, error) {
	items, err := repo.ListNotifications(ctx)
	if err != nil {
		return 0, apperr.NewPersistenceFailed(err)
	}
	for _, n := range items {
		store.Upsert(n)
	}
	publishCounts(store.Counts())
	return len(items), nil
}

func (s *service) HandleUserMessage(ctx context.Context, userID, text string) (*Reply, error) {
	userID = strings.TrimSpace(userID)
	text = strings.TrimSpace(text)
	if userID == "" {
		return nil, apperr.NewInvalidInput("user_id is required")
	}
	if text == "" {
		return nil, apperr.NewInvalidInput("text is required")
	}

	s.mu.Lock()

	sess, err := s.loadSession(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	var existing *Notification
	if sess.NotificationID != "" {
		if n, ok := s.store.Get(sess.NotificationID); ok {
			existing = &n
		}
	}

	tr := s.ctrl.userMessage(sess, existing, text)
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.mu.Unlock()
		return nil, apperr.NewPersistenceFailed(err)
	}

	metrics.MessagesReceived.WithLabelValues(string(MessageUser)).Inc()
	if tr.reply != nil {
		metrics.MessagesReceived.WithLabelValues(string(MessageBot)).Inc()
	}

	log := s.log.WithFields(map[string]interface{}{
		"userId":         userID,
		"conversationId": sess.ConversationID,
	})

	if tr.notification != nil {
		event := EventNotificationUpdated
		if tr.created {
			event = EventNotificationCreated
			metrics.NotificationsCreated.WithLabelValues(string(tr.notification.UserType)).Inc()
			log.Info("conversation escalated", map[string]interface{}{
				"userType": tr.notification.UserType,
				"messages": len(tr.notification.Messages),
			})
		}
		// Chat keeps working from memory when the repo is down.
		_ = s.commit(ctx, *tr.notification, event, false)
	}

	out := &Reply{
		ConversationID: sess.ConversationID,
		State:          sess.State,
		UserType:       sess.UserType,
		Reply:          tr.reply,
		NotificationID: sess.NotificationID,
	}
	s.mu.Unlock()

	if tr.created && s.titler != nil {
		n := *tr.notification
		titleCtx := context.WithoutCancel(ctx)
		s.titles.Add(1)
		go func() {
			defer s.titles.Done()
			s.retitle(titleCtx, n)
		}()
	}

	// The message is recorded by now, so a cancelled request only cuts the
	// delay short.
	if tr.reply != nil && s.botDelay > 0 {
		timer := time.NewTimer(s.botDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}

	return out, nil
}

func (s *service) GetSession(ctx context.Context, userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, apperr.NewPersistenceFailed(err)
	}
	if !ok {
		return nil, apperr.NewSessionNotFound(userID)
	}
	return sess, nil
}

func (s *service) Respond(ctx context.Context, notificationID, text string) (Notification, error) {
	text = strings.TrimSpace(text)
	if text == ResolveSentinel {
		return s.Resolve(ctx, notificationID)
	}
	if text == "" {
		return Notification{}, apperr.NewInvalidInput("text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, sess, err := s.loadNotification(ctx, notificationID)
	if err != nil {
		return Notification{}, err
	}

	updated, err := s.ctrl.employeeMessage(sess, n, text)
	if err != nil {
		return Notification{}, err
	}
	if err := s.commit(ctx, updated, EventNotificationUpdated, true); err != nil {
		return Notification{}, err
	}
	if sess != nil {
		if err := s.sessions.Save(ctx, sess); err != nil {
			s.log.WithError(err).Warn("session save failed after employee reply", map[string]interface{}{
				"notificationId": notificationID,
			})
		}
	}

	metrics.MessagesReceived.WithLabelValues(string(MessageEmployee)).Inc()
	return updated, nil
}

func (s *service) Resolve(ctx context.Context, notificationID string) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, sess, err := s.loadNotification(ctx, notificationID)
	if err != nil {
		return Notification{}, err
	}

	resolved, err := s.ctrl.resolve(sess, n)
	if err != nil {
		return Notification{}, err
	}
	if err := s.commit(ctx, resolved, EventNotificationResolved, true); err != nil {
		return Notification{}, err
	}
	if sess != nil {
		if err := s.sessions.Save(ctx, sess); err != nil {
			s.log.WithError(err).Warn("session reset failed after resolve", map[string]interface{}{
				"notificationId": notificationID,
			})
		}
	}

	metrics.NotificationsResolved.Inc()
	s.log.Info("notification resolved", map[string]interface{}{
		"notificationId": notificationID,
		"messages":       len(resolved.Messages),
	})
	return resolved, nil
}

// Close waits for background titles and delivers queued events.
func (s *service) Close() {
	s.titles.Wait()
	if s.outbox != nil {
		s.outbox.close()
	}
}

// drain is Close without stopping the outbox.
func (s *service) drain() {
	s.titles.Wait()
	if s.outbox != nil {
		s.outbox.flush()
	}
}

func (s *service) Notifications() []Notification {
	return s.store.Snapshot()
}

func (s *service) Notification(id string) (Notification, error) {
	n, ok := s.store.Get(id)
	if !ok {
		return Notification{}, apperr.NewNotificationNotFound(id)
	}
	return n, nil
}

func (s *service) Counts() Counts {
	return s.store.Counts()
}

// ------------------------------------------------------------

func (s *service) loadSession(ctx context.Context, userID string) (*Session, error) {
	sess, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, apperr.NewPersistenceFailed(err)
	}
	if !ok {
		sess = s.ctrl.newSession(userID)
	}
	return sess, nil
}

// loadNotification returns the notification and, when it still exists, the
// session of the user who raised it.
func (s *service) loadNotification(ctx context.Context, id string) (Notification, *Session, error) {
	n, ok := s.store.Get(id)
	if !ok {
		return Notification{}, nil, apperr.NewNotificationNotFound(id)
	}

	sess, found, err := s.sessions.Get(ctx, n.UserID)
	if err != nil {
		s.log.WithError(err).Warn("session lookup failed", map[string]interface{}{
			"userId": n.UserID,
		})
		return n, nil, nil
	}
	if !found {
		return n, nil, nil
	}
	return n, sess, nil
}

// commit persists n, applies it to the store and queues event. When strict
// is set a repo failure aborts the write.
func (s *service) commit(ctx context.Context, n Notification, event string, strict bool) error {
	if s.repo != nil {
		if err := s.repo.SaveNotification(ctx, n); err != nil {
			metrics.SideEffectFailures.WithLabelValues("persist").Inc()
			s.log.WithError(err).Error("save notification failed", map[string]interface{}{
				"notificationId": n.ID,
			})
			if strict {
				return apperr.NewPersistenceFailed(err)
			}
		}
	}

	s.store.Upsert(n)
	publishCounts(s.store.Counts())

	if s.outbox != nil {
		s.outbox.enqueue(ctx, event, n)
	}
	return nil
}

func (s *service) retitle(ctx context.Context, n Notification) {
	ctx, cancel := context.WithTimeout(ctx, titleTimeout)
	defer cancel()

	title, err := s.titler.Title(ctx, n.UserType, n.Messages)
	if err != nil {
		err = apperr.NewTitleGenerationFailed(err)
		metrics.SideEffectFailures.WithLabelValues("title").Inc()
		s.log.WithError(err).Warn("title generation failed", map[string]interface{}{
			"code":           apperr.Code(err),
			"notificationId": n.ID,
		})
		return
	}
	if strings.TrimSpace(title) == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.store.Get(n.ID)
	if !ok || cur.Status == StatusResolved {
		return
	}
	cur.Title = strings.TrimSpace(title)
	_ = s.commit(ctx, cur, EventNotificationUpdated, false)
}

func publishCounts(c Counts) {
	metrics.NotificationsByStatus.WithLabelValues(string(StatusPending)).Set(float64(c.Pending))
	metrics.NotificationsByStatus.WithLabelValues(string(StatusActive)).Set(float64(c.Active))
	metrics.NotificationsByStatus.WithLabelValues(string(StatusResolved)).Set(float64(c.Resolved))
}
