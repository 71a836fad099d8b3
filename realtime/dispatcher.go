package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/kendall-kelly/estate-inquiries-api/logger"
	"github.com/kendall-kelly/estate-inquiries-api/services"
)

// DefaultQueueSize is used when the configured queue size is not positive
const DefaultQueueSize = 1024

// Publisher delivers one serialized event to a topic
type Publisher interface {
	Publish(ctx context.Context, topic string, data []byte) error
}

// Dispatcher is the services.Notifier the inquiry service publishes to.
// Notify only enqueues; a worker goroutine hands events to the publisher.
type Dispatcher struct {
	publisher Publisher
	queue     chan services.Event

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with a bounded queue of size events
func NewDispatcher(publisher Publisher, size int) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Dispatcher{
		publisher: publisher,
		queue:     make(chan services.Event, size),
	}
}

// Notify enqueues event, dropping it when the queue is full
func (d *Dispatcher) Notify(event services.Event) {
	select {
	case d.queue <- event:
	default:
		notificationsDropped.WithLabelValues("dispatcher").Inc()
		logger.Get().Warn().
			Str("event_id", event.ID).
			Str("topic", event.Topic).
			Msg("notification queue full, dropping event")
	}
}

// Start runs the worker until Stop is called or ctx is done
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case event := <-d.queue:
				d.dispatch(ctx, event)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the worker and waits for it. Queued events are discarded.
func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, event services.Event) {
	defer func() {
		if r := recover(); r != nil {
			notificationsFailed.Inc()
			logger.Get().Error().Interface("panic", r).Str("event_id", event.ID).Msg("notification publisher panicked")
		}
	}()

	data, err := json.Marshal(event)
	if err != nil {
		notificationsFailed.Inc()
		logger.Get().Error().Err(err).Str("event_id", event.ID).Msg("failed to encode notification")
		return
	}
	if err := d.publisher.Publish(ctx, event.Topic, data); err != nil {
		notificationsFailed.Inc()
		logger.Get().Error().Err(err).
			Str("event_id", event.ID).
			Str("topic", event.Topic).
			Msg("failed to publish notification")
		return
	}
	notificationsPublished.Inc()
}
