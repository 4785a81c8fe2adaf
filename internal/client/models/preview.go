package models

import "time"

// Preview is a cached inline rendering of a stored file.
type Preview struct {
	FileID    string
	DataURL   string
	Size      int64
	CreatedAt time.Time
}
