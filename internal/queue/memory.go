package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"payment-gateway/internal/models"
)

// MemoryClient is an in-process queue used by tests and single-node runs
// without Redis. Delays are realized with timers, so delayed jobs become
// visible at roughly the requested time rather than on a polling tick.
type MemoryClient struct {
	mu     sync.Mutex
	lanes  map[Lane]chan *Job
	timers []*time.Timer
	closed bool

	stats map[Lane]*laneCounters
}

type laneCounters struct {
	delayed   atomic.Int64
	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

var _ Client = (*MemoryClient)(nil)

// NewMemoryClient creates an in-memory queue client
func NewMemoryClient() *MemoryClient {
	c := &MemoryClient{
		lanes: make(map[Lane]chan *Job),
		stats: make(map[Lane]*laneCounters),
	}
	for _, lane := range []Lane{LanePayments, LaneRefunds, LaneWebhooks} {
		c.lanes[lane] = make(chan *Job, 1024)
		c.stats[lane] = &laneCounters{}
	}
	return c
}

func (c *MemoryClient) lane(l Lane) chan *Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.lanes[l]
	if !ok {
		ch = make(chan *Job, 1024)
		c.lanes[l] = ch
		c.stats[l] = &laneCounters{}
	}
	return ch
}

func (c *MemoryClient) counters(l Lane) *laneCounters {
	c.lane(l)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats[l]
}

// Enqueue appends a job to the lane, optionally after a delay
func (c *MemoryClient) Enqueue(ctx context.Context, lane Lane, payload interface{}, delay time.Duration) error {
	job, err := newJob(lane, payload)
	if err != nil {
		return err
	}
	ch := c.lane(lane)

	if delay <= 0 {
		ch <- job
		return nil
	}

	cnt := c.counters(lane)
	cnt.delayed.Add(1)
	timer := time.AfterFunc(delay, func() {
		cnt.delayed.Add(-1)
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if !closed {
			ch <- job
		}
	})

	c.mu.Lock()
	c.timers = append(c.timers, timer)
	c.mu.Unlock()
	return nil
}

// Dequeue waits up to one second for a job, returning nil when none arrived
func (c *MemoryClient) Dequeue(ctx context.Context, lane Lane) (*Job, error) {
	ch := c.lane(lane)
	select {
	case job, ok := <-ch:
		if !ok {
			return nil, nil
		}
		c.counters(lane).active.Add(1)
		return job, nil
	case <-time.After(time.Second):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done records the job outcome for lane statistics
func (c *MemoryClient) Done(ctx context.Context, lane Lane, success bool) {
	cnt := c.counters(lane)
	cnt.active.Add(-1)
	if success {
		cnt.completed.Add(1)
	} else {
		cnt.failed.Add(1)
	}
}

// Stats reports the lane's job counts
func (c *MemoryClient) Stats(ctx context.Context, lane Lane) (*models.QueueStats, error) {
	ch := c.lane(lane)
	cnt := c.counters(lane)
	return &models.QueueStats{
		Pending:      int64(len(ch)) + cnt.delayed.Load(),
		Processing:   cnt.active.Load(),
		Completed:    cnt.completed.Load(),
		Failed:       cnt.failed.Load(),
		WorkerStatus: "running",
	}, nil
}

// Close stops pending delay timers and drops queued jobs
func (c *MemoryClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	for _, t := range c.timers {
		t.Stop()
	}
	return nil
}
