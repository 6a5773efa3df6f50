package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_messages_total",
			Help: "Chat messages appended, by author type",
		},
		[]string{"type"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_notifications_created_total",
			Help: "Conversations escalated to a human, by requester type",
		},
		[]string{"user_type"},
	)

	NotificationsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "support_notifications_resolved_total",
			Help: "Notifications marked resolved by an employee",
		},
	)

	NotificationsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "support_notifications",
			Help: "Current number of notifications per status",
		},
		[]string{"status"},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_side_effect_failures_total",
			Help: "Failed persistence, publishing or title calls",
		},
		[]string{"kind"},
	)
)
