package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/mechanic-shop/internal/events"
	"github.com/spec-kit/mechanic-shop/internal/service"
)

// ErrQueueFull is returned to publishers when the worker cannot keep up.
var ErrQueueFull = errors.New("notification queue full")

const defaultQueueSize = 256

// NotificationWorker moves notification delivery off the request path. It
// subscribes to the dispatcher, buffers events and hands them to the
// notification service from a single goroutine.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan queuedEvent
	wg            sync.WaitGroup
}

type queuedEvent struct {
	ctx   context.Context
	event events.Event
}

// NewNotificationWorker builds a worker with the given buffer size.
func NewNotificationWorker(notifications *service.NotificationService, logger *zap.Logger, queueSize int) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan queuedEvent, queueSize),
	}
}

// StartNotificationWorker registers the worker with dispatcher and starts
// draining until ctx is cancelled.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	if notifications == nil || dispatcher == nil {
		return nil
	}
	w := NewNotificationWorker(notifications, logger, defaultQueueSize)
	w.Register(dispatcher)
	w.Start(ctx)
	return w
}

// Register subscribes the worker to every event the notification service handles.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	for _, eventType := range w.notifications.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

func (w *NotificationWorker) enqueue(ctx context.Context, event events.Event) error {
	select {
	case w.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		w.logger.Warn("dropping notification", zap.String("event_type", string(event.Type)), zap.Int64("ticket_id", event.TicketID))
		return ErrQueueFull
	}
}

// Start launches the delivery goroutine. Events still queued when ctx ends
// are delivered before the goroutine exits.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case item := <-w.queue:
				w.deliver(item)
			case <-ctx.Done():
				w.drain()
				return
			}
		}
	}()
}

func (w *NotificationWorker) drain() {
	for {
		select {
		case item := <-w.queue:
			w.deliver(item)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(item queuedEvent) {
	if err := w.notifications.Handle(item.ctx, item.event); err != nil {
		w.logger.Error("notification delivery failed",
			zap.String("event_id", item.event.ID),
			zap.String("event_type", string(item.event.Type)),
			zap.Error(err))
	}
}

// Wait blocks until the delivery goroutine has exited.
func (w *NotificationWorker) Wait() {
	if w == nil {
		return
	}
	w.wg.Wait()
}
