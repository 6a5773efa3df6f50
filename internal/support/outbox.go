package support

import (
	"context"
	"sync"
	"time"

	"github.com/Vovarama1992/rental-support-bridge/internal/apperr"
	"github.com/Vovarama1992/rental-support-bridge/internal/logger"
	"github.com/Vovarama1992/rental-support-bridge/internal/metrics"
)

const (
	outboxSize     = 256
	publishTimeout = 15 * time.Second
)

type outboxItem struct {
	ctx   context.Context
	event string
	n     Notification
}

// outbox hands lifecycle events to the publisher on a single worker, in the
// order they were committed.
type outbox struct {
	pub     Publisher
	log     logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	closed  bool
	queue   chan outboxItem
	pending sync.WaitGroup
	done    chan struct{}
}

func newOutbox(pub Publisher, log logger.Logger) *outbox {
	o := &outbox{
		pub:     pub,
		log:     log,
		timeout: publishTimeout,
		queue:   make(chan outboxItem, outboxSize),
		done:    make(chan struct{}),
	}
	go o.run()
	return o
}

// enqueue blocks only when the queue is full.
func (o *outbox) enqueue(ctx context.Context, event string, n Notification) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		o.log.Warn("event dropped after shutdown", map[string]interface{}{
			"event":          event,
			"notificationId": n.ID,
		})
		return
	}
	o.pending.Add(1)
	o.queue <- outboxItem{ctx: context.WithoutCancel(ctx), event: event, n: n.clone()}
}

func (o *outbox) run() {
	defer close(o.done)
	for item := range o.queue {
		o.deliver(item)
		o.pending.Done()
	}
}

func (o *outbox) deliver(item outboxItem) {
	ctx, cancel := context.WithTimeout(item.ctx, o.timeout)
	defer cancel()

	if err := o.pub.Publish(ctx, item.event, item.n); err != nil {
		err = apperr.NewEventPublishFailed(item.event, err)
		metrics.SideEffectFailures.WithLabelValues("publish").Inc()
		o.log.WithError(err).Warn("publish failed", map[string]interface{}{
			"code":           apperr.Code(err),
			"event":          item.event,
			"notificationId": item.n.ID,
		})
	}
}

// flush waits until every queued event has been handed to the publisher.
func (o *outbox) flush() {
	o.pending.Wait()
}

// close drains the queue and stops the worker.
func (o *outbox) close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.queue)
	o.mu.Unlock()

	<-o.done
}
