package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

// ProcessFunc handles one discovered post. Errors are logged, not retried;
// the next poll cycle re-discovers the post and dedup absorbs it.
type ProcessFunc func(ctx context.Context, post models.Post) error

// Pool fans discovered posts out to a fixed number of ingestion workers so
// several posts from one poll cycle are classified concurrently.
type Pool struct {
	numWorkers int
	posts      chan models.Post
	processor  ProcessFunc
	wg         sync.WaitGroup
}

func NewPool(numWorkers int, bufferSize int, processor ProcessFunc) *Pool {
	return &Pool{
		numWorkers: numWorkers,
		posts:      make(chan models.Post, bufferSize),
		processor:  processor,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case post, ok := <-p.posts:
			if !ok {
				return
			}
			if err := p.processor(ctx, post); err != nil {
				slog.Error("error processing post", "id", post.ID, "error", err)
			}
		}
	}
}

func (p *Pool) Submit(post models.Post) {
	p.posts <- post
}

func (p *Pool) Stop() {
	close(p.posts)
	p.wg.Wait()
}
