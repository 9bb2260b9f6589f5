package queue

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/swahilipot/room-booking/internal/core/ports"
	"github.com/swahilipot/room-booking/internal/pkg/metrics"
)

const (
	defaultWorkers     = 4
	defaultBuffer      = 256
	defaultSendTimeout = 15 * time.Second
)

// Options tunes a Dispatcher. Zero values select the defaults.
type Options struct {
	Workers     int
	Buffer      int
	SendTimeout time.Duration
}

// Dispatcher delivers notifications on a fixed set of workers. Messages are
// sharded by recipient, so one recipient's emails go out in enqueue order.
type Dispatcher struct {
	workers  []chan ports.Message
	notifier ports.Notifier
	timeout  time.Duration
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher whose workers hand messages to notifier.
func NewDispatcher(notifier ports.Notifier, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}

	perWorker := opts.Buffer / opts.Workers
	if perWorker < 1 {
		perWorker = 1
	}
	d := &Dispatcher{
		workers:  make([]chan ports.Message, opts.Workers),
		notifier: notifier,
		timeout:  opts.SendTimeout,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Message, perWorker)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// messages still buffered at that point are discarded.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker started by Start has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue never blocks. When the recipient's shard is full the message is
// dropped and counted.
func (d *Dispatcher) Enqueue(msg ports.Message) {
	select {
	case d.workers[d.shardIndex(msg.To)] <- msg:
		metrics.NotificationQueueDepth.Inc()
	default:
		metrics.NotificationsDroppedTotal.WithLabelValues(msg.Kind).Inc()
		d.log.Warn().
			Str("message_id", msg.ID).
			Str("kind", msg.Kind).
			Str("to", msg.To).
			Msg("notification queue full, message dropped")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(recipient)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Message) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.Dec()
			d.deliver(ctx, id, msg)
		}
	}
}

// deliver makes exactly one attempt bounded by the send timeout.
func (d *Dispatcher) deliver(ctx context.Context, worker int, msg ports.Message) {
	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.notifier.Send(sendCtx, msg); err != nil {
		metrics.NotificationsTotal.WithLabelValues(msg.Kind, "failed").Inc()
		d.log.Error().Err(err).
			Str("message_id", msg.ID).
			Str("kind", msg.Kind).
			Str("to", msg.To).
			Int("worker_id", worker).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(msg.Kind, "sent").Inc()
	d.log.Debug().
		Str("message_id", msg.ID).
		Str("kind", msg.Kind).
		Int("worker_id", worker).
		Msg("notification sent")
}
