package model

import "time"

// SourceKind identifies where a graded document came from.
type SourceKind string

const (
	// SourceFile is a document read from the local filesystem.
	SourceFile SourceKind = "file"

	// SourceURL is a document fetched over HTTP.
	SourceURL SourceKind = "url"
)

// String returns the kind as a plain string.
func (k SourceKind) String() string {
	return string(k)
}

// Run is one grading of one document.
type Run struct {
	// ID is the database identifier. Zero until the run is saved.
	ID int64 `json:"id,omitempty"`

	// Kind is the document source mode.
	Kind SourceKind `json:"kind"`

	// Location is the file path or URL of the document.
	Location string `json:"location"`

	// DocumentHash is the hex SHA-256 of the raw document bytes.
	DocumentHash string `json:"document_hash"`

	// CheckedAt is when the document was graded.
	CheckedAt time.Time `json:"checked_at"`

	// Report is the per-selector result.
	Report *Report `json:"report"`
}

// NewRun creates a Run stamped with the current time.
func NewRun(kind SourceKind, location, documentHash string, report *Report) *Run {
	return &Run{
		Kind:         kind,
		Location:     location,
		DocumentHash: documentHash,
		CheckedAt:    time.Now().UTC(),
		Report:       report,
	}
}
