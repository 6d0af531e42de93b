package entity

import "time"

// Document is a file upload owned by exactly one user. Rows are immutable
// after creation; UploadedAt is set once by the store.
type Document struct {
	ID         string
	OwnerID    string
	FileURL    string
	Title      string
	UploadedAt time.Time
}
