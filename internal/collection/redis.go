package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sharath018/event-calendar-backend/internal/event"
)

const redisUpdateRetries = 5

// Redis is a Collection kept in a Redis hash, with insertion order in a
// sorted set and change notifications on a pub/sub channel.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, name string) *Redis {
	return &Redis{client: client, prefix: "calendar:" + name}
}

func (r *Redis) docsKey() string    { return r.prefix + ":docs" }
func (r *Redis) orderKey() string   { return r.prefix + ":order" }
func (r *Redis) seqKey() string     { return r.prefix + ":seq" }
func (r *Redis) channelKey() string { return r.prefix + ":changes" }

func (r *Redis) Subscribe(ctx context.Context) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	ps := r.client.Subscribe(subCtx, r.channelKey())
	if _, err := ps.Receive(subCtx); err != nil {
		cancel()
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	first, err := r.load(subCtx)
	if err != nil {
		cancel()
		_ = ps.Close()
		return nil, err
	}

	sub := &redisSubscription{
		snapshots: make(chan Snapshot, 1),
		errs:      make(chan error, 1),
		cancel:    cancel,
	}
	deliver(sub.snapshots, first)

	go sub.run(subCtx, r, ps)
	return sub, nil
}

func (r *Redis) NewID() string {
	return uuid.NewString()
}

// Create writes the document only if id is new. The order entry is added
// with NX so a retry after a partial write completes it without moving an
// existing document.
func (r *Redis) Create(ctx context.Context, id string, fields event.Fields) error {
	data, err := json.Marshal(fields.WithID(id))
	if err != nil {
		return err
	}

	if _, err := r.client.HSetNX(ctx, r.docsKey(), id, data).Result(); err != nil {
		return fmt.Errorf("redis create %s: %w", id, err)
	}

	seq, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("redis create %s: %w", id, err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAddNX(ctx, r.orderKey(), redis.Z{Score: float64(seq), Member: id})
		pipe.Publish(ctx, r.channelKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis create %s: %w", id, err)
	}
	return nil
}

func (r *Redis) Update(ctx context.Context, id string, patch event.Patch) error {
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, r.docsKey(), id).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var current event.Event
		if err := json.Unmarshal([]byte(raw), &current); err != nil {
			return err
		}
		data, err := json.Marshal(patch.Apply(current))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.docsKey(), id, data)
			pipe.Publish(ctx, r.channelKey(), id)
			return nil
		})
		return err
	}

	for i := 0; i < redisUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, r.docsKey())
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis update %s: %w", id, err)
		}
		return nil
	}
	return fmt.Errorf("redis update %s: %w", id, redis.TxFailedErr)
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	removed, err := r.client.HDel(ctx, r.docsKey(), id).Result()
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	if removed == 0 {
		return nil
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, r.orderKey(), id)
		pipe.Publish(ctx, r.channelKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", id, err)
	}
	return nil
}

func (r *Redis) load(ctx context.Context) (Snapshot, error) {
	ids, err := r.client.ZRange(ctx, r.orderKey(), 0, -1).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("redis load order: %w", err)
	}
	if len(ids) == 0 {
		return Snapshot{Events: []event.Event{}, ReadTime: time.Now()}, nil
	}

	values, err := r.client.HMGet(ctx, r.docsKey(), ids...).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("redis load docs: %w", err)
	}

	events := make([]event.Event, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e event.Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			log.Printf("⚠️ Skipping unreadable event document %s: %v", ids[i], err)
			continue
		}
		e.ID = ids[i]
		events = append(events, e)
	}
	return Snapshot{Events: events, ReadTime: time.Now()}, nil
}

type redisSubscription struct {
	snapshots chan Snapshot
	errs      chan error
	cancel    context.CancelFunc
	once      sync.Once
}

func (s *redisSubscription) Snapshots() <-chan Snapshot { return s.snapshots }
func (s *redisSubscription) Errors() <-chan error       { return s.errs }

func (s *redisSubscription) Stop() {
	s.once.Do(s.cancel)
}

func (s *redisSubscription) run(ctx context.Context, r *Redis, ps *redis.PubSub) {
	defer func() {
		_ = ps.Close()
		close(s.snapshots)
		close(s.errs)
	}()

	messages := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-messages:
			if !ok {
				return
			}
			snap, err := r.load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case s.errs <- err:
				default:
				}
				return
			}
			deliver(s.snapshots, snap)
		}
	}
}
