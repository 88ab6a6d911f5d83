// Package monitor discovers disaster-related posts from social media
// sources and feeds them into the ingestion pipeline.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crisiswatch/disaster-watch/internal/config"
	"github.com/crisiswatch/disaster-watch/internal/models"
	"github.com/crisiswatch/disaster-watch/internal/notify"
	"github.com/crisiswatch/disaster-watch/internal/observability"
	"github.com/crisiswatch/disaster-watch/internal/pipeline"
	"github.com/crisiswatch/disaster-watch/internal/worker"
)

// Ingestor is the slice of the pipeline the monitor needs.
type Ingestor interface {
	Ingest(ctx context.Context, post models.Post) (pipeline.Result, error)
}

type Manager struct {
	cfg      *config.Config
	ingestor Ingestor
	notifier *notify.Broadcaster
	metrics  *observability.Metrics
	pool     *worker.Pool
	wg       sync.WaitGroup
}

func NewManager(cfg *config.Config, ingestor Ingestor, notifier *notify.Broadcaster,
	metrics *observability.Metrics) *Manager {
	return &Manager{
		cfg:      cfg,
		ingestor: ingestor,
		notifier: notifier,
		metrics:  metrics,
	}
}

func (m *Manager) Start(ctx context.Context) {
	processor := func(ctx context.Context, post models.Post) error {
		res, err := m.ingestor.Ingest(ctx, post)
		if err != nil {
			// Per-post failures stay isolated; the monitor keeps running.
			slog.Error("error ingesting post", "id", post.ID, "error", err)
			return err
		}

		if res.Status == pipeline.StatusCreated && m.notifier != nil &&
			res.Record.UrgencyLevel >= m.cfg.Alerts.MinUrgency {
			m.notifier.Publish(res.Record)
		}
		return nil
	}

	m.pool = worker.NewPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	m.metrics.MonitorRunning.Set(1)

	for _, sub := range m.cfg.Monitor.Subreddits {
		m.wg.Add(1)
		go m.runPoller(ctx, sub, m.cfg.Monitor.PollInterval)
	}
}

func (m *Manager) runPoller(ctx context.Context, subreddit string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "subreddit", subreddit, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, subreddit)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "subreddit", subreddit)
			return
		case <-ticker.C:
			m.poll(ctx, subreddit)
		}
	}
}

func (m *Manager) poll(ctx context.Context, subreddit string) {
	slog.Debug("polling", "subreddit", subreddit)

	posts, err := m.fetchNewPosts(ctx, subreddit)
	if err != nil {
		m.metrics.PollCycles.WithLabelValues(subreddit, "error").Inc()
		slog.Error("poll failed", "subreddit", subreddit, "error", err)
		return
	}

	for _, p := range posts {
		m.pool.Submit(p)
	}

	m.metrics.PollCycles.WithLabelValues(subreddit, "success").Inc()
	slog.Debug("poll complete", "subreddit", subreddit, "count", len(posts))
}

func (m *Manager) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	m.metrics.MonitorRunning.Set(0)
	slog.Info("monitor stopped")
}
