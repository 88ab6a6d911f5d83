package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Single connection: SQLite serializes writes anyway, and one shared
	// connection keeps ":memory:" databases from splitting per pool conn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS disaster_posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			disaster_type TEXT NOT NULL,
			urgency_level INTEGER NOT NULL,
			confidence_level INTEGER NOT NULL,
			place TEXT NOT NULL,
			region TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			author TEXT NOT NULL,
			content TEXT NOT NULL,
			sources TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_disaster_posts_created_at ON disaster_posts(created_at);
		CREATE INDEX IF NOT EXISTS idx_disaster_posts_urgency ON disaster_posts(urgency_level);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const recordColumns = `id, title, disaster_type, urgency_level, confidence_level,
	place, region, latitude, longitude, author, content, sources, created_at`

// Put inserts the record unless the id is already present. INSERT OR IGNORE
// rides on the primary key, so two concurrent writers of the same id resolve
// to exactly one inserted row with no explicit locking; the loser reads back
// the winner's row.
func (s *SQLiteDB) Put(ctx context.Context, r *models.DisasterRecord) (*models.DisasterRecord, bool, error) {
	sources, err := json.Marshal(r.Sources)
	if err != nil {
		return nil, false, fmt.Errorf("error encoding sources: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO disaster_posts (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, string(r.DisasterType), r.UrgencyLevel, r.ConfidenceLevel,
		r.Place, r.Region, r.Latitude, r.Longitude, r.Author, r.Content,
		string(sources), r.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("error inserting record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		existing, err := s.GetByID(ctx, r.ID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("record %s vanished between insert and read", r.ID)
		}
		return existing, false, nil
	}

	return r, true, nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.DisasterRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM disaster_posts WHERE id = ?`, id)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning record: %w", err)
	}
	return r, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM disaster_posts WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking existence: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteDB) GetAll(ctx context.Context, limit int) ([]models.DisasterRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM disaster_posts
		ORDER BY created_at DESC, id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRecords(ctx, query, args...)
}

func (s *SQLiteDB) GetRecent(ctx context.Context, window time.Duration) ([]models.DisasterRecord, error) {
	cutoff := time.Now().UTC().Add(-window)
	return s.queryRecords(ctx, `
		SELECT `+recordColumns+` FROM disaster_posts
		WHERE created_at >= ?
		ORDER BY created_at DESC, id ASC`, cutoff)
}

func (s *SQLiteDB) GetUrgent(ctx context.Context, minLevel int) ([]models.DisasterRecord, error) {
	return s.queryRecords(ctx, `
		SELECT `+recordColumns+` FROM disaster_posts
		WHERE urgency_level >= ?
		ORDER BY created_at DESC, id ASC`, minLevel)
}

func (s *SQLiteDB) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByDisasterType: make(map[string]int),
		ByUrgencyLevel: make(map[int]int),
		ByRegion:       make(map[string]int),
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(confidence_level), 0) FROM disaster_posts`).
		Scan(&stats.TotalPosts, &stats.AvgConfidence)
	if err != nil {
		return nil, fmt.Errorf("error counting records: %w", err)
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM disaster_posts WHERE created_at >= ?`, cutoff).
		Scan(&stats.RecentPosts24h)
	if err != nil {
		return nil, fmt.Errorf("error counting recent records: %w", err)
	}

	if err := s.countBy(ctx, "disaster_type", func(key string, count int) {
		stats.ByDisasterType[key] = count
	}); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "region", func(key string, count int) {
		stats.ByRegion[key] = count
	}); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, "urgency_level", func(key string, count int) {
		var level int
		if _, err := fmt.Sscanf(key, "%d", &level); err == nil {
			stats.ByUrgencyLevel[level] = count
		}
	}); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *SQLiteDB) countBy(ctx context.Context, column string, collect func(key string, count int)) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT CAST(%s AS TEXT), COUNT(*) FROM disaster_posts GROUP BY %s`, column, column))
	if err != nil {
		return fmt.Errorf("error grouping by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("error scanning %s group: %w", column, err)
		}
		collect(key, count)
	}
	return rows.Err()
}

func (s *SQLiteDB) queryRecords(ctx context.Context, query string, args ...any) ([]models.DisasterRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying records: %w", err)
	}
	defer rows.Close()

	var records []models.DisasterRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.DisasterRecord, error) {
	var r models.DisasterRecord
	var disasterType, sources string

	err := row.Scan(&r.ID, &r.Title, &disasterType, &r.UrgencyLevel,
		&r.ConfidenceLevel, &r.Place, &r.Region, &r.Latitude, &r.Longitude,
		&r.Author, &r.Content, &sources, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.DisasterType = models.DisasterType(disasterType)
	if err := json.Unmarshal([]byte(sources), &r.Sources); err != nil || r.Sources == nil {
		r.Sources = []string{}
	}
	return &r, nil
}
