// Package pipeline orchestrates ingestion of one social-media post:
// dedup check, classification, normalization, coordinate resolution and a
// single atomic store write.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/crisiswatch/disaster-watch/internal/classify"
	"github.com/crisiswatch/disaster-watch/internal/geo"
	"github.com/crisiswatch/disaster-watch/internal/models"
	"github.com/crisiswatch/disaster-watch/internal/normalize"
	"github.com/crisiswatch/disaster-watch/internal/observability"
	"github.com/crisiswatch/disaster-watch/internal/repository"
)

type Status string

const (
	StatusCreated      Status = "created"
	StatusDeduplicated Status = "deduplicated"
	StatusRejected     Status = "rejected"
)

// Result is the outcome of one Ingest call. Record is set for Created and
// Deduplicated; Reason is set for Rejected.
type Result struct {
	Status Status
	Record *models.DisasterRecord
	Reason classify.FailureReason
}

type Pipeline struct {
	classifier classify.Classifier
	repo       repository.DisasterRepository
	clock      clockwork.Clock
	metrics    *observability.Metrics
}

func New(classifier classify.Classifier, repo repository.DisasterRepository,
	clock clockwork.Clock, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		repo:       repo,
		clock:      clock,
		metrics:    metrics,
	}
}

// Ingest runs one post through the pipeline. Within a single post ID, at
// most one call ever returns Created; concurrent attempts lose the store's
// insert-or-ignore race and observe Deduplicated. A classification failure
// yields Rejected with a nil error: it is a domain outcome, not a fault.
// Only store unavailability surfaces as an error.
func (p *Pipeline) Ingest(ctx context.Context, post models.Post) (Result, error) {
	existing, err := p.repo.GetByID(ctx, post.ID)
	if err != nil {
		return Result{}, fmt.Errorf("error checking existence of %s: %w", post.ID, err)
	}
	if existing != nil {
		p.metrics.IngestOutcomes.WithLabelValues(string(StatusDeduplicated)).Inc()
		return Result{Status: StatusDeduplicated, Record: existing}, nil
	}

	start := p.clock.Now()
	candidate, err := p.classifier.Classify(ctx, post)
	p.metrics.ClassifyDuration.Observe(p.clock.Since(start).Seconds())
	if err != nil {
		var cerr *classify.Error
		if errors.As(err, &cerr) {
			p.metrics.IngestOutcomes.WithLabelValues(string(StatusRejected)).Inc()
			p.metrics.ClassifyFailures.WithLabelValues(string(cerr.Reason)).Inc()
			slog.Info("post rejected", "id", post.ID, "reason", cerr.Reason)
			return Result{Status: StatusRejected, Reason: cerr.Reason}, nil
		}
		return Result{}, fmt.Errorf("error classifying %s: %w", post.ID, err)
	}

	record := normalize.Normalize(mergePost(candidate, post))
	record.Latitude, record.Longitude = geo.Resolve(record.Place)
	record.CreatedAt = p.clock.Now().UTC()

	// A cancelled ingest must leave no trace; check before committing.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	stored, created, err := p.repo.Put(ctx, &record)
	if err != nil {
		return Result{}, fmt.Errorf("error storing %s: %w", post.ID, err)
	}
	if !created {
		// Lost the insert race to a concurrent ingestion of the same id.
		p.metrics.IngestOutcomes.WithLabelValues(string(StatusDeduplicated)).Inc()
		return Result{Status: StatusDeduplicated, Record: stored}, nil
	}

	p.metrics.IngestOutcomes.WithLabelValues(string(StatusCreated)).Inc()
	slog.Info("ingested disaster post", "id", stored.ID,
		"type", stored.DisasterType, "urgency", stored.UrgencyLevel, "place", stored.Place)
	return Result{Status: StatusCreated, Record: stored}, nil
}

// mergePost folds the post's own metadata into the classifier candidate.
// The classifier owns the disaster attributes; the post owns identity,
// authorship and text.
func mergePost(c models.CandidateRecord, post models.Post) models.CandidateRecord {
	c.ID = post.ID
	if post.Title != "" {
		c.Title = &post.Title
	}
	if post.Author != "" {
		c.Author = &post.Author
	}
	if post.Content != "" {
		c.Content = &post.Content
	}
	return c
}
