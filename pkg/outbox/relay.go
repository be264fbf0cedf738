package outbox

import (
	"context"
	"log/slog"
	"time"
)

type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
	ExtendLease(ctx context.Context, relayID string, ids []int64, lease time.Duration) error
}

// Relay polls the outbox store for pending events and dispatches them to
// Kafka. Delivery is at-least-once: an event whose MarkSent write is lost
// will be claimed and dispatched again once its lease expires.
type Relay struct {
	log       *slog.Logger
	store     Store
	dispatch  *Dispatcher
	relayID   string
	batchSize int
	interval  time.Duration
	lease     time.Duration
}

func NewRelay(log *slog.Logger, store Store, dispatch *Dispatcher, relayID string) *Relay {
	return &Relay{
		log:       log,
		store:     store,
		dispatch:  dispatch,
		relayID:   relayID,
		batchSize: 100,
		interval:  500 * time.Millisecond,
		lease:     5 * time.Second,
	}
}

func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay stopping", "relay_id", r.relayID)
			return nil
		case <-t.C:
			if err := r.drain(ctx); err != nil {
				r.log.Error("relay drain error", "err", err)
			}
		}
	}
}

func (r *Relay) drain(ctx context.Context) error {
	events, err := r.store.LockBatch(ctx, r.relayID, r.batchSize, r.lease)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	deadline := time.Now().Add(r.lease / 2)
	sent := make([]int64, 0, len(events))
	for _, event := range events {
		if err := r.dispatch.Dispatch(ctx, event); err != nil {
			_ = r.store.MarkFailed(ctx, event.ID, err.Error())
			continue
		}
		sent = append(sent, event.ID)

		// Slow brokers can outlast the lease on large batches.
		if time.Now().After(deadline) {
			remaining := remainingIDs(events, event.ID)
			if len(remaining) > 0 {
				if err := r.store.ExtendLease(ctx, r.relayID, remaining, r.lease); err != nil {
					r.log.Error("relay lease extend error", "err", err)
				}
			}
			deadline = time.Now().Add(r.lease / 2)
		}
	}
	if len(sent) > 0 {
		if err := r.store.MarkSent(ctx, sent); err != nil {
			return err
		}
	}
	return nil
}

func remainingIDs(events []Event, after int64) []int64 {
	var ids []int64
	for _, e := range events {
		if e.ID > after {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
