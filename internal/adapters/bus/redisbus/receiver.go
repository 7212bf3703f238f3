package redisbus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orders/internal/adapters/bus"
	"orders/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// Receiver is one consumer of the consumer group.
type Receiver struct {
	cfg    Config
	client *redis.Client
}

var _ ports.MessageReceiver = (*Receiver)(nil)

func NewReceiver(cfg Config) (*Receiver, error) {
	if err := cfg.validateConsumer(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}
	return &Receiver{cfg: cfg, client: newClient(cfg)}, nil
}

func (r *Receiver) Receive(ctx context.Context, onMessage func(context.Context, ports.Delivery)) error {
	if err := r.ensureGroup(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if err := r.drainOwnPending(ctx, onMessage); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	var lastClaim time.Time
	for {
		if time.Since(lastClaim) >= r.cfg.claimMinIdle() {
			lastClaim = time.Now()
			if err := r.claimStale(ctx, onMessage); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}

		streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    r.cfg.Group,
			Consumer: r.cfg.Consumer,
			Streams:  []string{r.cfg.Stream, ">"},
			Count:    1,
			Block:    r.cfg.block(),
		}).Result()
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis xreadgroup from %s: %w", r.cfg.Stream, err)
		}

		for _, stream := range streams {
			for _, entry := range stream.Messages {
				msg, count := fromEntry(entry)
				onMessage(ctx, &delivery{receiver: r, entryID: entry.ID, msg: msg, count: count})
			}
		}
	}
}

// drainOwnPending redelivers the entries this consumer received in an earlier
// session and never acknowledged.
func (r *Receiver) drainOwnPending(ctx context.Context, onMessage func(context.Context, ports.Delivery)) error {
	start := "0"
	for {
		streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    r.cfg.Group,
			Consumer: r.cfg.Consumer,
			Streams:  []string{r.cfg.Stream, start},
			Count:    1,
			Block:    -1,
		}).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis read pending of %s: %w", r.cfg.Consumer, err)
		}

		var entries []redis.XMessage
		for _, stream := range streams {
			entries = append(entries, stream.Messages...)
		}
		if len(entries) == 0 {
			return nil
		}

		for _, entry := range entries {
			if err := r.redeliver(ctx, entry, onMessage); err != nil {
				return err
			}
			start = entry.ID
			if ctx.Err() != nil {
				return nil
			}
		}
	}
}

// claimStale takes over entries other consumers left unacknowledged for
// longer than the claim idle time.
func (r *Receiver) claimStale(ctx context.Context, onMessage func(context.Context, ports.Delivery)) error {
	start := "0-0"
	for {
		entries, next, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   r.cfg.Stream,
			Group:    r.cfg.Group,
			Consumer: r.cfg.Consumer,
			MinIdle:  r.cfg.claimMinIdle(),
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			return fmt.Errorf("redis xautoclaim on %s: %w", r.cfg.Stream, err)
		}

		for _, entry := range entries {
			if err := r.redeliver(ctx, entry, onMessage); err != nil {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
		}

		if next == "" || next == "0-0" {
			return nil
		}
		start = next
	}
}

// redeliver hands out an entry Redis delivered before. Its delivery count adds
// the deliveries Redis recorded for the entry to the count it was written
// with. An entry past the delivery limit is dead lettered without handling.
func (r *Receiver) redeliver(ctx context.Context, entry redis.XMessage, onMessage func(context.Context, ports.Delivery)) error {
	msg, count := fromEntry(entry)

	pending, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: r.cfg.Stream,
		Group:  r.cfg.Group,
		Start:  entry.ID,
		End:    entry.ID,
		Count:  1,
	}).Result()
	if err != nil {
		return fmt.Errorf("redis xpending %s: %w", entry.ID, err)
	}
	if len(pending) == 1 && pending[0].RetryCount > 1 {
		count += int(pending[0].RetryCount) - 1
	} else {
		count++
	}

	d := &delivery{receiver: r, entryID: entry.ID, msg: msg, count: count}
	if count > r.cfg.maxDeliveries() {
		return d.DeadLetter(ctx, ports.ReasonMaxDeliveryCountExceeded, bus.ExhaustedDescription(count-1))
	}

	onMessage(ctx, d)
	return nil
}

func (r *Receiver) Close() error {
	return r.client.Close()
}

func (r *Receiver) ensureGroup(ctx context.Context) error {
	err := r.client.XGroupCreateMkStream(ctx, r.cfg.Stream, r.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("redis create group %s: %w", r.cfg.Group, err)
	}
	return nil
}

type delivery struct {
	receiver *Receiver
	entryID  string
	msg      ports.Message
	count    int
}

func (d *delivery) Message() ports.Message {
	return d.msg
}

func (d *delivery) DeliveryCount() int {
	return d.count
}

func (d *delivery) Complete(ctx context.Context) error {
	cfg := d.receiver.cfg
	if err := d.receiver.client.XAck(ctx, cfg.Stream, cfg.Group, d.entryID).Err(); err != nil {
		return fmt.Errorf("redis xack %s: %w", d.msg.ID, err)
	}
	return nil
}

func (d *delivery) Abandon(ctx context.Context) error {
	if bus.Exhausted(d.count, d.receiver.cfg.MaxDeliveries) {
		return d.DeadLetter(ctx, ports.ReasonMaxDeliveryCountExceeded, bus.ExhaustedDescription(d.count))
	}

	cfg := d.receiver.cfg
	_, err := d.receiver.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAdd(ctx, addArgs(cfg.Stream, cfg.MaxLen, d.msg, d.count+1))
		pipe.XAck(ctx, cfg.Stream, cfg.Group, d.entryID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis redeliver %s: %w", d.msg.ID, err)
	}
	return nil
}

func (d *delivery) DeadLetter(ctx context.Context, reasonCode, description string) error {
	cfg := d.receiver.cfg
	dlq := cfg.deadLetterStream()

	_, err := d.receiver.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAdd(ctx, addArgs(dlq, 0, d.msg, d.count,
			bus.HeaderReasonCode, reasonCode,
			bus.HeaderDescription, description,
		))
		pipe.XAck(ctx, cfg.Stream, cfg.Group, d.entryID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis dead letter %s to %s: %w", d.msg.ID, dlq, err)
	}
	return nil
}
