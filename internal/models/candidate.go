package models

// CandidateRecord is a classifier's raw output merged with the originating
// post's metadata. Any field may be absent (nil) or out of range; the
// normalizer turns a candidate into a fully populated DisasterRecord.
type CandidateRecord struct {
	ID              string
	Title           *string
	DisasterType    *string
	UrgencyLevel    *int
	ConfidenceLevel *int
	Place           *string
	Region          *string
	Author          *string
	Content         *string
	Sources         []string
}
