package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inquiry_notifications_published_total",
			Help: "Total number of inquiry notifications handed to the publisher",
		},
	)

	notificationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inquiry_notifications_failed_total",
			Help: "Total number of inquiry notifications the publisher rejected",
		},
	)

	notificationsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_notifications_dropped_total",
			Help: "Total number of inquiry notifications dropped because a queue was full",
		},
		[]string{"stage"},
	)

	activeSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inquiry_ws_subscriptions_active",
			Help: "Number of open websocket topic subscriptions",
		},
	)
)
