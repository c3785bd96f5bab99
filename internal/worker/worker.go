package worker

import (
	"context"
	"sync"

	"github.com/crisislab/crisis-monitor/internal/models"
)

type ProcessFunc func(ctx context.Context, rec *models.DisasterRecord) error

// Pool processes records on a fixed number of goroutines behind a bounded
// queue. The refresh cycle submits newly merged records here so archiving
// never blocks the aggregation path.
type Pool struct {
	numWorkers int
	jobs       chan *models.DisasterRecord
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan *models.DisasterRecord, bufferSize),
		processor:  processor,
	}
}

// Start launches the workers. Queued jobs survive cancellation of ctx so a
// shutdown still archives everything already accepted; only Stop closing the
// queue ends the workers.
func (p *Pool) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for rec := range p.jobs {
		p.processor(ctx, rec)
	}
}

func (p *Pool) Submit(rec *models.DisasterRecord) {
	p.jobs <- rec
}

// Stop closes the queue and waits for in-flight work to drain.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
