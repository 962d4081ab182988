package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"payment-gateway/internal/models"
)

// RedisClient is the production queue transport. Each lane is a Redis list
// of ready jobs plus a sorted set of delayed jobs scored by their ready
// time; due jobs are promoted from the set to the list before every
// dequeue, so a promotion missed by one worker is picked up by the next.
type RedisClient struct {
	rdb *redis.Client
}

var _ Client = (*RedisClient)(nil)

// NewRedisClient creates a queue client over an existing Redis connection
func NewRedisClient(rdb *redis.Client) *RedisClient {
	return &RedisClient{rdb: rdb}
}

func laneKey(lane Lane) string { return fmt.Sprintf("gateway:queue:%s", lane) }

func delayedKey(lane Lane) string { return laneKey(lane) + ":delayed" }

func counterKey(lane Lane, c string) string { return laneKey(lane) + ":" + c }

// Enqueue appends a job to the lane. A positive delay parks the job in the
// delayed set until it is due.
func (c *RedisClient) Enqueue(ctx context.Context, lane Lane, payload interface{}, delay time.Duration) error {
	job, err := newJob(lane, payload)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if delay > 0 {
		readyAt := float64(time.Now().Add(delay).UnixMilli())
		return c.rdb.ZAdd(ctx, delayedKey(lane), redis.Z{Score: readyAt, Member: raw}).Err()
	}
	return c.rdb.LPush(ctx, laneKey(lane), raw).Err()
}

// promoteDue moves delayed jobs whose ready time has passed onto the ready list
func (c *RedisClient) promoteDue(ctx context.Context, lane Lane) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	due, err := c.rdb.ZRangeByScore(ctx, delayedKey(lane), &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil || len(due) == 0 {
		return err
	}

	pipe := c.rdb.TxPipeline()
	for _, member := range due {
		pipe.ZRem(ctx, delayedKey(lane), member)
		pipe.LPush(ctx, laneKey(lane), member)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Dequeue pops the oldest ready job, blocking up to one second
func (c *RedisClient) Dequeue(ctx context.Context, lane Lane) (*Job, error) {
	if err := c.promoteDue(ctx, lane); err != nil {
		return nil, err
	}

	res, err := c.rdb.BRPop(ctx, time.Second, laneKey(lane)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("malformed job on lane %s: %w", lane, err)
	}

	c.rdb.Incr(ctx, counterKey(lane, "active"))
	return &job, nil
}

// Done records the job outcome counters for the lane
func (c *RedisClient) Done(ctx context.Context, lane Lane, success bool) {
	pipe := c.rdb.TxPipeline()
	pipe.Decr(ctx, counterKey(lane, "active"))
	if success {
		pipe.Incr(ctx, counterKey(lane, "completed"))
	} else {
		pipe.Incr(ctx, counterKey(lane, "failed"))
	}
	_, _ = pipe.Exec(ctx)
}

// Stats reports waiting, in-flight and finished job counts for the lane
func (c *RedisClient) Stats(ctx context.Context, lane Lane) (*models.QueueStats, error) {
	ready, err := c.rdb.LLen(ctx, laneKey(lane)).Result()
	if err != nil {
		return nil, err
	}
	delayed, err := c.rdb.ZCard(ctx, delayedKey(lane)).Result()
	if err != nil {
		return nil, err
	}
	active, _ := c.rdb.Get(ctx, counterKey(lane, "active")).Int64()
	completed, _ := c.rdb.Get(ctx, counterKey(lane, "completed")).Int64()
	failed, _ := c.rdb.Get(ctx, counterKey(lane, "failed")).Int64()

	return &models.QueueStats{
		Pending:      ready + delayed,
		Processing:   active,
		Completed:    completed,
		Failed:       failed,
		WorkerStatus: "running",
	}, nil
}

// Close closes the underlying Redis connection
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
