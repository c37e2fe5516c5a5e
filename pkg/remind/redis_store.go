package remind

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisScheduleStore shares schedule state between engine instances. Pair
// atomicity relies on Redis executing each script as a single operation, so
// the create-if-absent check cannot race across processes.
type RedisScheduleStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// createPendingScript returns the existing pending schedule untouched, or
// stores the new one. Dispatched state is overwritten: a new scheduling
// request after dispatch starts the next cycle.
var createPendingScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	local obj = cjson.decode(cur)
	if obj.status == 'scheduled' then
		return {0, cur}
	end
end
redis.call('SET', KEYS[1], ARGV[1])
return {1, ARGV[1]}
`)

var markDispatchedScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
	return redis.error_reply('not scheduled')
end
local obj = cjson.decode(cur)
if obj.status ~= 'scheduled' then
	return redis.error_reply('not scheduled')
end
obj.status = 'dispatched'
local out = cjson.encode(obj)
redis.call('SET', KEYS[1], out)
return out
`)

// NewRedisScheduleStore creates a schedule store on the given Redis client.
// Panics on a nil client to fail fast during initialization.
func NewRedisScheduleStore(client redis.UniversalClient) *RedisScheduleStore {
	if client == nil {
		panic("remind: redis client is required")
	}
	return &RedisScheduleStore{client: client, keyPrefix: "replenish:schedule:"}
}

func (s *RedisScheduleStore) key(customerID, productID string) string {
	return s.keyPrefix + customerID + ":" + productID
}

// GetPending returns the pending schedule for the pair, or nil when idle.
func (s *RedisScheduleStore) GetPending(ctx context.Context, customerID, productID string) (*Schedule, error) {
	raw, err := s.client.Get(ctx, s.key(customerID, productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	var sched Schedule
	if err := json.Unmarshal(raw, &sched); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	if sched.Status != StatusScheduled {
		return nil, nil
	}
	return &sched, nil
}

// CreatePending stores sched unless a pending schedule already exists.
func (s *RedisScheduleStore) CreatePending(ctx context.Context, sched Schedule) (Schedule, bool, error) {
	sched.Status = StatusScheduled
	payload, err := json.Marshal(sched)
	if err != nil {
		return Schedule{}, false, errors.Join(ErrStoreUnavailable, err)
	}

	res, err := createPendingScript.Run(ctx, s.client, []string{s.key(sched.CustomerID, sched.ProductID)}, payload).Slice()
	if err != nil {
		return Schedule{}, false, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return Schedule{}, false, errors.Join(ErrStoreUnavailable, fmt.Errorf("unexpected script reply %v", res))
	}

	created := res[0].(int64) == 1
	var stored Schedule
	if err := json.Unmarshal([]byte(res[1].(string)), &stored); err != nil {
		return Schedule{}, false, errors.Join(ErrStoreUnavailable, err)
	}
	return stored, created, nil
}

// MarkDispatched transitions the pair's pending schedule to dispatched.
func (s *RedisScheduleStore) MarkDispatched(ctx context.Context, customerID, productID string) (Schedule, error) {
	raw, err := markDispatchedScript.Run(ctx, s.client, []string{s.key(customerID, productID)}).Text()
	if err != nil {
		if strings.Contains(err.Error(), "not scheduled") {
			return Schedule{}, ErrNotScheduled
		}
		return Schedule{}, errors.Join(ErrStoreUnavailable, err)
	}

	var sched Schedule
	if err := json.Unmarshal([]byte(raw), &sched); err != nil {
		return Schedule{}, errors.Join(ErrStoreUnavailable, err)
	}
	return sched, nil
}

// ListPending scans the schedule keyspace and returns pending schedules.
// SCAN is cursor-based, so concurrent writes may or may not be reflected.
func (s *RedisScheduleStore) ListPending(ctx context.Context) ([]Schedule, error) {
	var pending []Schedule
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		var sched Schedule
		if err := json.Unmarshal(raw, &sched); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		if sched.Status == StatusScheduled {
			pending = append(pending, sched)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return pending, nil
}

// Reset returns the pair to idle.
func (s *RedisScheduleStore) Reset(ctx context.Context, customerID, productID string) error {
	if err := s.client.Del(ctx, s.key(customerID, productID)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
