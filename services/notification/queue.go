package notification

import (
	"context"
	"sync"
	"time"

	"carenest/models"

	"go.uber.org/zap"
)

// Queue decouples booking transitions from push delivery. Publish enqueues
// without blocking and Run drains the queue, bounding every delivery by a
// timeout.
type Queue struct {
	ch         chan models.Notification
	dispatcher Dispatcher
	timeout    time.Duration
	logger     *zap.Logger
	wg         sync.WaitGroup
}

func NewQueue(dispatcher Dispatcher, size int, timeout time.Duration, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Queue{
		ch:         make(chan models.Notification, size),
		dispatcher: dispatcher,
		timeout:    timeout,
		logger:     logger,
	}
}

// Publish enqueues n. A full queue drops the notification.
func (q *Queue) Publish(n models.Notification) {
	select {
	case q.ch <- n:
	default:
		q.logger.Warn("notification queue full, dropping notification",
			zap.String("recipient", n.RecipientID), zap.String("type", n.Type))
	}
}

// Start runs the delivery loop in the background. Wait blocks until it has
// drained, even when ctx is cancelled before the goroutine is scheduled.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.Run(ctx)
	}()
}

// Run delivers queued notifications until ctx is cancelled, then drains what is
// left with a fresh deadline per delivery.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case n := <-q.ch:
			q.deliver(context.Background(), n)
		case <-ctx.Done():
			for {
				select {
				case n := <-q.ch:
					q.deliver(context.Background(), n)
				default:
					return
				}
			}
		}
	}
}

// Wait blocks until the loop launched by Start has returned.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) deliver(parent context.Context, n models.Notification) {
	ctx, cancel := context.WithTimeout(parent, q.timeout)
	defer cancel()

	if err := q.dispatcher.Notify(ctx, n); err != nil {
		q.logger.Warn("notification delivery failed",
			zap.String("recipient", n.RecipientID), zap.String("type", n.Type), zap.Error(err))
	}
}
