// Package normalize turns a classifier candidate into a fully populated
// DisasterRecord. It is the single point where default values are applied:
// the "no stored field is ever null" guarantee of the whole system lives
// here and nowhere else.
package normalize

import (
	"fmt"
	"strings"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

// Normalize is pure and total: it never fails, regardless of how sparse or
// out-of-range the candidate is. Present in-domain values are kept, numeric
// values are clamped into their declared ranges, and absent or unusable
// values fall back to the documented defaults. Coordinates and CreatedAt are
// not set here; the pipeline attaches both.
func Normalize(c models.CandidateRecord) models.DisasterRecord {
	r := models.DisasterRecord{
		ID:              c.ID,
		DisasterType:    normalizeType(c.DisasterType),
		UrgencyLevel:    clampOrDefault(c.UrgencyLevel, models.UrgencyLow, models.UrgencyCritical, models.DefaultUrgency),
		ConfidenceLevel: clampOrDefault(c.ConfidenceLevel, models.ConfidenceMin, models.ConfidenceMax, models.DefaultConfidence),
		Place:           stringOrDefault(c.Place, models.DefaultPlace),
		Region:          strings.ToLower(stringOrDefault(c.Region, models.DefaultRegion)),
		Author:          stringOrDefault(c.Author, models.DefaultAuthor),
		Content:         stringOrDefault(c.Content, models.DefaultContent),
		Sources:         c.Sources,
	}

	if r.Sources == nil {
		r.Sources = []string{}
	}

	r.Title = normalizeTitle(c.Title, r.DisasterType, r.Place)

	return r
}

func normalizeType(t *string) models.DisasterType {
	if t == nil {
		return models.DisasterTypeOther
	}
	dt, ok := models.ParseDisasterType(strings.ToLower(strings.TrimSpace(*t)))
	if !ok {
		return models.DisasterTypeOther
	}
	return dt
}

func normalizeTitle(t *string, dt models.DisasterType, place string) string {
	if t != nil && strings.TrimSpace(*t) != "" {
		return strings.TrimSpace(*t)
	}
	return fmt.Sprintf("%s alert - %s", capitalize(string(dt)), place)
}

// clampOrDefault defaults only on absence; an out-of-range value is clamped
// to the nearest bound, not replaced.
func clampOrDefault(v *int, lo, hi, def int) int {
	if v == nil {
		return def
	}
	if *v < lo {
		return lo
	}
	if *v > hi {
		return hi
	}
	return *v
}

func stringOrDefault(s *string, def string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return def
	}
	return strings.TrimSpace(*s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
