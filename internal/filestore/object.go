package filestore

import "time"

// ObjectInfo describes a single stored object.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"` // -1 if unknown
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// ListOptions controls how ListObjects filters results.
type ListOptions struct {
	// Prefix restricts results to keys starting with it. "" lists everything.
	Prefix string

	// Limit caps the number of results. 0 means no cap.
	Limit int
}
