package repository

import (
	"context"
	"time"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

// Stats aggregates the stored records for the /api/stats endpoint.
type Stats struct {
	TotalPosts     int            `json:"total_posts"`
	RecentPosts24h int            `json:"recent_posts_24h"`
	ByDisasterType map[string]int `json:"by_disaster_type"`
	ByUrgencyLevel map[int]int    `json:"by_urgency_level"`
	ByRegion       map[string]int `json:"by_region"`
	AvgConfidence  float64        `json:"avg_confidence"`
}

// DisasterRepository is the single shared mutable resource between the
// ingestion pipeline (sole writer) and the read API. Put is insert-if-absent:
// the id's unique constraint, not a lock, arbitrates concurrent writers.
// All list queries order by created_at descending with ties broken by id
// ascending so repeated snapshots are deterministic.
type DisasterRepository interface {
	// Put stores the record unless one with the same ID already exists.
	// It returns the stored or pre-existing record and whether this call
	// created it.
	Put(ctx context.Context, r *models.DisasterRecord) (*models.DisasterRecord, bool, error)
	GetByID(ctx context.Context, id string) (*models.DisasterRecord, error)
	Exists(ctx context.Context, id string) (bool, error)
	GetAll(ctx context.Context, limit int) ([]models.DisasterRecord, error)
	GetRecent(ctx context.Context, window time.Duration) ([]models.DisasterRecord, error)
	GetUrgent(ctx context.Context, minLevel int) ([]models.DisasterRecord, error)
	Stats(ctx context.Context) (*Stats, error)
	Ping(ctx context.Context) error
}
