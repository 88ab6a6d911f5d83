package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/crisiswatch/disaster-watch/internal/classify"
	"github.com/crisiswatch/disaster-watch/internal/geo"
	"github.com/crisiswatch/disaster-watch/internal/models"
	"github.com/crisiswatch/disaster-watch/internal/observability"
	"github.com/crisiswatch/disaster-watch/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubClassifier returns a fixed candidate or error; hook runs before
// returning so tests can interleave cancellation.
type stubClassifier struct {
	candidate models.CandidateRecord
	err       error
	hook      func(ctx context.Context)
}

func (s *stubClassifier) Classify(ctx context.Context, post models.Post) (models.CandidateRecord, error) {
	if s.hook != nil {
		s.hook(ctx)
	}
	return s.candidate, s.err
}

func newTestPipeline(t *testing.T, classifier classify.Classifier) (*Pipeline, repository.DisasterRepository) {
	t.Helper()

	db, err := repository.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return New(classifier, db, clockwork.NewFakeClock(), metrics), db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func earthquakeCandidate() models.CandidateRecord {
	return models.CandidateRecord{
		DisasterType:    strPtr("earthquake"),
		UrgencyLevel:    intPtr(3),
		ConfidenceLevel: intPtr(9),
		Place:           strPtr("Tokyo"),
		Region:          strPtr("asia"),
	}
}

func TestIngest_EndToEnd(t *testing.T) {
	pipe, repo := newTestPipeline(t, &stubClassifier{candidate: earthquakeCandidate()})

	post := models.Post{
		ID:      "p1",
		Title:   "Massive earthquake hits city, buildings down",
		Content: "Massive earthquake hits city, buildings down",
	}

	res, err := pipe.Ingest(context.Background(), post)
	require.NoError(t, err)
	require.Equal(t, StatusCreated, res.Status)
	require.NotNil(t, res.Record)

	stored, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, models.DisasterTypeEarthquake, stored.DisasterType)
	assert.Equal(t, 3, stored.UrgencyLevel)
	assert.Equal(t, 9, stored.ConfidenceLevel)

	wantLat, wantLng := geo.Resolve("Tokyo")
	assert.Equal(t, wantLat, stored.Latitude)
	assert.Equal(t, wantLng, stored.Longitude)
	assert.False(t, stored.Unresolved())

	// No author on the post, so the default applies; the content does not.
	assert.Equal(t, models.DefaultAuthor, stored.Author)
	assert.Equal(t, "Massive earthquake hits city, buildings down", stored.Content)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestIngest_Idempotent(t *testing.T) {
	pipe, repo := newTestPipeline(t, &stubClassifier{candidate: earthquakeCandidate()})
	post := models.Post{ID: "p1", Title: "Earthquake in Tokyo"}

	first, err := pipe.Ingest(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, first.Status)

	second, err := pipe.Ingest(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, StatusDeduplicated, second.Status)
	assert.Equal(t, first.Record.ID, second.Record.ID)

	all, err := repo.GetAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngest_ClassificationFailureRejects(t *testing.T) {
	pipe, repo := newTestPipeline(t, &stubClassifier{
		err: &classify.Error{Reason: classify.ReasonTimeout},
	})

	res, err := pipe.Ingest(context.Background(), models.Post{ID: "p1", Title: "slow post"})
	require.NoError(t, err, "a classification failure is an outcome, not an error")
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, classify.ReasonTimeout, res.Reason)
	assert.Nil(t, res.Record)

	all, err := repo.GetAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, all, "no partial record may be written")
}

func TestIngest_ConcurrentSameID(t *testing.T) {
	pipe, repo := newTestPipeline(t, &stubClassifier{candidate: earthquakeCandidate()})
	post := models.Post{ID: "race_1", Title: "Earthquake in Tokyo"}

	const n = 8
	results := make([]Result, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = pipe.Ingest(context.Background(), post)
		}(i)
	}
	wg.Wait()

	var created, deduplicated int
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		switch results[i].Status {
		case StatusCreated:
			created++
		case StatusDeduplicated:
			deduplicated++
		}
		require.NotNil(t, results[i].Record)
		assert.Equal(t, "race_1", results[i].Record.ID)
		assert.Equal(t, models.DisasterTypeEarthquake, results[i].Record.DisasterType)
	}

	assert.Equal(t, 1, created, "exactly one writer wins")
	assert.Equal(t, n-1, deduplicated)

	all, err := repo.GetAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIngest_CancelledBeforeCommitLeavesNoTrace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pipe, repo := newTestPipeline(t, &stubClassifier{
		candidate: earthquakeCandidate(),
		hook:      func(context.Context) { cancel() },
	})

	_, err := pipe.Ingest(ctx, models.Post{ID: "p1", Title: "Earthquake in Tokyo"})
	require.Error(t, err)

	all, err := repo.GetAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestIngest_UnknownPlaceGetsSentinel(t *testing.T) {
	candidate := earthquakeCandidate()
	candidate.Place = strPtr("Atlantis Deep")
	pipe, _ := newTestPipeline(t, &stubClassifier{candidate: candidate})

	res, err := pipe.Ingest(context.Background(), models.Post{ID: "p1", Title: "quake"})
	require.NoError(t, err)
	require.Equal(t, StatusCreated, res.Status)

	assert.True(t, res.Record.Unresolved())
	assert.Equal(t, "Atlantis Deep", res.Record.Place, "place text survives even when unresolvable")
}
