package models

import "time"

type DisasterType string

const (
	DisasterTypeEarthquake DisasterType = "earthquake"
	DisasterTypeFlood      DisasterType = "flood"
	DisasterTypeFire       DisasterType = "fire"
	DisasterTypeStorm      DisasterType = "storm"
	DisasterTypeLandslide  DisasterType = "landslide"
	DisasterTypeOther      DisasterType = "other"
)

// ParseDisasterType maps free-form classifier output onto the closed type
// set. Unrecognized values report ok=false so callers can default.
func ParseDisasterType(s string) (DisasterType, bool) {
	switch DisasterType(s) {
	case DisasterTypeEarthquake, DisasterTypeFlood, DisasterTypeFire,
		DisasterTypeStorm, DisasterTypeLandslide, DisasterTypeOther:
		return DisasterType(s), true
	default:
		return DisasterTypeOther, false
	}
}

// Urgency levels. The store only ever holds values in [UrgencyLow, UrgencyCritical].
const (
	UrgencyLow      = 1
	UrgencyHigh     = 2
	UrgencyCritical = 3
)

// Confidence bounds for the classifier's self-reported score.
const (
	ConfidenceMin = 0
	ConfidenceMax = 10
)

// Canonical defaults applied by normalization. Every optional field of a
// stored record resolves to one of these when the classifier left it absent.
const (
	DefaultPlace      = "Unknown Location"
	DefaultRegion     = "unknown"
	DefaultAuthor     = "anonymous"
	DefaultContent    = "No description available"
	DefaultUrgency    = UrgencyLow
	DefaultConfidence = 5
)

// DisasterRecord is the canonical normalized unit stored for every ingested
// post. Records are immutable once written; CreatedAt is the ingestion time,
// not the time of the originating post.
type DisasterRecord struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	DisasterType    DisasterType `json:"disaster_type"`
	UrgencyLevel    int          `json:"urgency_level"`
	ConfidenceLevel int          `json:"confidence_level"`
	Place           string       `json:"place"`
	Region          string       `json:"region"`
	Latitude        float64      `json:"latitude"`
	Longitude       float64      `json:"longitude"`
	Author          string       `json:"author"`
	Content         string       `json:"content"`
	Sources         []string     `json:"sources"`
	CreatedAt       time.Time    `json:"created_at"`
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (r *DisasterRecord) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

// Unresolved reports whether the record carries the (0,0) sentinel, meaning
// geocoding failed or the place itself was defaulted. Consumers must never
// render the sentinel as a real position.
func (r *DisasterRecord) Unresolved() bool {
	return r.Latitude == 0 && r.Longitude == 0
}
