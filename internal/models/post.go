package models

import "time"

// Post is a raw social-media submission as discovered by a source monitor,
// before classification. ID is the dedup key: at most one DisasterRecord is
// ever stored per post ID.
type Post struct {
	ID        string
	Platform  string // "reddit"
	Title     string
	Content   string
	Author    string
	Timestamp time.Time // when the post was published on the platform
}
