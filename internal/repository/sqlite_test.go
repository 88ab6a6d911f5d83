package repository

import (
	"context"
	"testing"
	"time"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRecord(id string) *models.DisasterRecord {
	return &models.DisasterRecord{
		ID:              id,
		Title:           "Test Earthquake",
		DisasterType:    models.DisasterTypeEarthquake,
		UrgencyLevel:    2,
		ConfidenceLevel: 7,
		Place:           "Tokyo",
		Region:          "asia",
		Latitude:        35.6762,
		Longitude:       139.6503,
		Author:          "tester",
		Content:         "Strong shaking reported downtown.",
		Sources:         []string{"https://example.com/report"},
		CreatedAt:       time.Now().UTC(),
	}
}

func TestSQLiteDB_PutAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	stored, created, err := db.Put(ctx, testRecord("test_123"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !created {
		t.Error("expected created=true for first Put")
	}
	if stored.ID != "test_123" {
		t.Errorf("expected id 'test_123', got '%s'", stored.ID)
	}

	got, err := db.GetByID(ctx, "test_123")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.Title != "Test Earthquake" {
		t.Errorf("expected title 'Test Earthquake', got '%s'", got.Title)
	}
	if got.DisasterType != models.DisasterTypeEarthquake {
		t.Errorf("expected type earthquake, got '%s'", got.DisasterType)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "https://example.com/report" {
		t.Errorf("sources did not round-trip: %v", got.Sources)
	}
}

func TestSQLiteDB_GetByID_Missing(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing id, got %+v", got)
	}
}

func TestSQLiteDB_PutDuplicateReturnsExisting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := testRecord("dup_test")
	if _, _, err := db.Put(ctx, first); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}

	second := testRecord("dup_test")
	second.Title = "Different Title"

	stored, created, err := db.Put(ctx, second)
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	if created {
		t.Error("expected created=false for duplicate id")
	}
	if stored.Title != "Test Earthquake" {
		t.Errorf("expected the first writer's record, got title '%s'", stored.Title)
	}

	all, err := db.GetAll(ctx, 0)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected exactly 1 record, got %d", len(all))
	}
}

func TestSQLiteDB_Exists(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	exists, err := db.Exists(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected false for nonexistent ID")
	}

	db.Put(ctx, testRecord("exists_test"))

	exists, err = db.Exists(ctx, "exists_test")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected true for existing ID")
	}
}

func TestSQLiteDB_GetRecent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	fresh := testRecord("fresh")
	fresh.CreatedAt = now
	stale := testRecord("stale")
	stale.CreatedAt = now.Add(-48 * time.Hour)

	db.Put(ctx, fresh)
	db.Put(ctx, stale)

	results, err := db.GetRecent(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 recent record, got %d", len(results))
	}
	if results[0].ID != "fresh" {
		t.Errorf("expected 'fresh', got '%s'", results[0].ID)
	}
}

func TestSQLiteDB_GetUrgent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i, id := range []string{"low", "high", "critical"} {
		r := testRecord(id)
		r.UrgencyLevel = i + 1
		db.Put(ctx, r)
	}

	results, err := db.GetUrgent(ctx, models.UrgencyHigh)
	if err != nil {
		t.Fatalf("GetUrgent failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 records with urgency >= 2, got %d", len(results))
	}

	results, err = db.GetUrgent(ctx, models.UrgencyCritical)
	if err != nil {
		t.Fatalf("GetUrgent failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 record with urgency >= 3, got %d", len(results))
	}
}

func TestSQLiteDB_OrderingIsDeterministic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	// Same created_at: ties must break by id ascending.
	for _, id := range []string{"b", "a", "c"} {
		r := testRecord(id)
		r.CreatedAt = now
		db.Put(ctx, r)
	}
	older := testRecord("z_older")
	older.CreatedAt = now.Add(-time.Hour)
	db.Put(ctx, older)

	results, err := db.GetAll(ctx, 0)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	want := []string{"a", "b", "c", "z_older"}
	if len(results) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(results))
	}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("position %d: expected '%s', got '%s'", i, id, results[i].ID)
		}
	}
}

func TestSQLiteDB_Stats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	records := []*models.DisasterRecord{
		{ID: "s1", DisasterType: models.DisasterTypeFlood, UrgencyLevel: 3, ConfidenceLevel: 8, Region: "asia", CreatedAt: now},
		{ID: "s2", DisasterType: models.DisasterTypeFlood, UrgencyLevel: 1, ConfidenceLevel: 4, Region: "asia", CreatedAt: now},
		{ID: "s3", DisasterType: models.DisasterTypeFire, UrgencyLevel: 3, ConfidenceLevel: 6, Region: "europe", CreatedAt: now.Add(-48 * time.Hour)},
	}
	for _, r := range records {
		r.Sources = []string{}
		if _, _, err := db.Put(ctx, r); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.TotalPosts != 3 {
		t.Errorf("expected 3 total, got %d", stats.TotalPosts)
	}
	if stats.RecentPosts24h != 2 {
		t.Errorf("expected 2 recent, got %d", stats.RecentPosts24h)
	}
	if stats.ByDisasterType["flood"] != 2 {
		t.Errorf("expected 2 floods, got %d", stats.ByDisasterType["flood"])
	}
	if stats.ByUrgencyLevel[3] != 2 {
		t.Errorf("expected 2 critical, got %d", stats.ByUrgencyLevel[3])
	}
	if stats.ByRegion["europe"] != 1 {
		t.Errorf("expected 1 in europe, got %d", stats.ByRegion["europe"])
	}
	wantAvg := (8.0 + 4.0 + 6.0) / 3.0
	if stats.AvgConfidence < wantAvg-0.01 || stats.AvgConfidence > wantAvg+0.01 {
		t.Errorf("expected avg confidence %.2f, got %.2f", wantAvg, stats.AvgConfidence)
	}
}
