package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/storehubhq/storehub-backend/pkg/logger"
)

const defaultQueueSize = 256

// Publisher delivers one event to the outside world. Implementations may
// fail; the dispatcher logs and moves on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// DispatcherParams configure the async dispatcher.
type DispatcherParams struct {
	Logger    *logger.Logger
	Publisher Publisher
	QueueSize int
}

// Dispatcher hands events to a bounded queue and delivers them from a
// background goroutine. Notify never blocks the caller and never returns an
// error into it; a full queue drops the event with a warning.
type Dispatcher struct {
	logg      *logger.Logger
	publisher Publisher
	queue     chan Event

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDispatcher builds a dispatcher and starts its delivery loop.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("publisher required")
	}
	size := params.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	d := &Dispatcher{
		logg:      params.Logger,
		publisher: params.Publisher,
		queue:     make(chan Event, size),
	}
	d.wg.Add(1)
	go d.deliverLoop()
	return d, nil
}

// Notify enqueues the event without blocking the caller.
func (d *Dispatcher) Notify(ctx context.Context, event Event) {
	select {
	case d.queue <- event:
	default:
		logCtx := d.logg.WithFields(ctx, map[string]any{
			"event_type": event.Type,
			"tenant_id":  event.TenantID.String(),
		})
		d.logg.Warn(logCtx, "notification queue full; event dropped")
	}
}

func (d *Dispatcher) deliverLoop() {
	defer d.wg.Done()
	for event := range d.queue {
		ctx := d.logg.WithFields(context.Background(), map[string]any{
			"event_type": event.Type,
			"tenant_id":  event.TenantID.String(),
			"dedupe_key": event.DedupeKey(),
		})
		if err := d.publisher.Publish(ctx, event); err != nil {
			d.logg.Error(ctx, "notification delivery failed", err)
			continue
		}
		d.logg.Debug(ctx, "notification delivered")
	}
}

// Close drains the queue and stops the delivery loop.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
