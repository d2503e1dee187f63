// Package queue delivers notifications asynchronously through a fixed pool
// of workers. Sharding by recipient keeps per-recipient ordering so a user
// never sees a "booking completed" email before the "proposal accepted" one.
package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/api/metrics"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Sender delivers a single notification. The production implementation is
// an external mail provider; LogSender stands in where none is configured.
type Sender interface {
	Send(ctx context.Context, n ports.Notification) error
}

// Deduper suppresses repeat deliveries of the same notification.
type Deduper interface {
	IsDuplicate(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// Dispatcher routes notifications to a fixed set of workers using
// consistent hashing on the recipient address.
type Dispatcher struct {
	workers []chan ports.Notification
	sender  Sender
	dedup   Deduper
	log     zerolog.Logger
}

var _ ports.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, dedup Deduper, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Notification, numWorkers),
		sender:  sender,
		dedup:   dedup,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a notification to the worker responsible for its recipient.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(n ports.Notification) {
	d.workers[d.shardIndex(n.Recipient)] <- n
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	for {
		select {
		case <-ctx.Done():
			d.drainWorker(id, ch)
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, n)
		}
	}
}

// drainWorker delivers whatever is still buffered when the worker is told to
// stop, so notifications already accepted by Enqueue are not dropped on
// shutdown. Delivery uses a fresh context because the worker's own context
// is already cancelled.
func (d *Dispatcher) drainWorker(id int, ch <-chan ports.Notification) {
	for {
		select {
		case n := <-ch:
			d.deliver(context.Background(), id, n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, n ports.Notification) {
	if n.DedupKey != "" && d.dedup != nil {
		isDup, err := d.dedup.IsDuplicate(ctx, n.DedupKey)
		if err != nil {
			d.log.Warn().Err(err).Str("dedup_key", n.DedupKey).Msg("dedup check failed, delivering anyway")
		} else if isDup {
			metrics.NotificationsTotal.WithLabelValues("dedup").Inc()
			d.log.Debug().Str("dedup_key", n.DedupKey).Msg("duplicate notification skipped")
			return
		}
	}

	if err := d.sender.Send(ctx, n); err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("kind", string(n.Kind)).
			Str("recipient", n.Recipient).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
		return
	}

	if n.DedupKey != "" && d.dedup != nil {
		if err := d.dedup.Mark(ctx, n.DedupKey); err != nil {
			d.log.Warn().Err(err).Str("dedup_key", n.DedupKey).Msg("failed to set dedup key")
		}
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}

// LogSender is the fallback Sender: it writes the notification to the log
// instead of sending an email. Tokens are logged at debug level only.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Send(_ context.Context, n ports.Notification) error {
	s.Log.Info().
		Str("kind", string(n.Kind)).
		Str("recipient", n.Recipient).
		Str("subject", n.Subject).
		Msg("notification dispatched")
	if n.Token != "" {
		s.Log.Debug().Str("recipient", n.Recipient).Str("token", n.Token).Msg("notification token")
	}
	return nil
}
