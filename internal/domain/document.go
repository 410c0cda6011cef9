package domain

import "time"

// Document is the raw CSV text held for one session.
type Document struct {
	SessionID  string
	FileName   string
	Content    string
	SizeBytes  int
	Digest     string
	UploadedAt time.Time
}
