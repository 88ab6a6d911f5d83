package api

import (
	"time"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

// MapPoint is the flat marker payload the map view consumes.
type MapPoint struct {
	ID         string  `json:"id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Type       string  `json:"type"`
	Urgency    int     `json:"urgency"`
	Confidence int     `json:"confidence"`
	Place      string  `json:"place"`
	Title      string  `json:"title"`
	Timestamp  string  `json:"timestamp"`
	Author     string  `json:"author"`
}

// toMapPoints drops records carrying the (0,0) unresolved sentinel: a marker
// with no reliable geocoding must not be drawn at a fake position.
func toMapPoints(records []models.DisasterRecord) []MapPoint {
	points := make([]MapPoint, 0, len(records))

	for _, r := range records {
		if r.Unresolved() {
			continue
		}
		points = append(points, MapPoint{
			ID:         r.ID,
			Lat:        r.Latitude,
			Lng:        r.Longitude,
			Type:       string(r.DisasterType),
			Urgency:    r.UrgencyLevel,
			Confidence: r.ConfidenceLevel,
			Place:      r.Place,
			Title:      r.Title,
			Timestamp:  r.CreatedAt.UTC().Format(time.RFC3339),
			Author:     r.Author,
		})
	}

	return points
}
