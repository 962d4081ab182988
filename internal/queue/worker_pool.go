package queue

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// HandlerFunc processes a single dequeued job. A returned error marks the
// job failed; any retry is the handler's own responsibility, by enqueueing
// a follow-up job.
type HandlerFunc func(ctx context.Context, job *Job) error

// WorkerPool runs a fixed number of goroutines draining one lane
type WorkerPool struct {
	client      Client
	lane        Lane
	concurrency int
	handler     HandlerFunc
	log         *logrus.Entry

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool creates a pool of concurrency workers for the lane
func NewWorkerPool(client Client, lane Lane, concurrency int, handler HandlerFunc) *WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &WorkerPool{
		client:      client,
		lane:        lane,
		concurrency: concurrency,
		handler:     handler,
		log:         logrus.WithField("component", "worker_pool").WithField("lane", string(lane)),
	}
}

// Start launches the workers. They run until Stop is called or ctx is
// canceled.
func (p *WorkerPool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.log.WithField("concurrency", p.concurrency).Info("Starting workers")

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

func (p *WorkerPool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.client.Dequeue(ctx, p.lane)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.WithError(err).Error("Failed to dequeue job")
			continue
		}
		if job == nil {
			continue
		}

		if err := p.handler(ctx, job); err != nil {
			p.log.WithError(err).WithField("job_id", job.ID).Error("Job failed")
			p.client.Done(ctx, p.lane, false)
			continue
		}
		p.client.Done(ctx, p.lane, true)
	}
}

// Stop signals the workers and waits for in-flight jobs to finish
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.log.Info("Workers stopped")
}
