package model

import (
	"time"
)

const (
	FileTypeEvidence = "evidence"
)

// File records an uploaded object. Stored objects are keyed by a generated
// uuid filename, never by the client-supplied name.
type File struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`    // Who uploaded this file
	OwnerType    string    `db:"owner_type"` // "target", etc.
	OwnerID      string    `db:"owner_id"`   // Polymorphic FK
	Type         string    `db:"type"`
	Filename     string    `db:"filename"`
	OriginalName string    `db:"original_name"`
	MimeType     string    `db:"mime_type"`
	Size         int64     `db:"size"`
	StoragePath  string    `db:"storage_path"`
	CreatedAt    time.Time `db:"created_at"`
}
