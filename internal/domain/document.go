package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded rent roll file awaiting analysis.
type Document struct {
	ID       uuid.UUID
	FileName string
	Size     int64
	Payload  []byte
}

// NewDocument assigns an id and captures the payload size.
func NewDocument(fileName string, payload []byte) Document {
	return Document{
		ID:       uuid.New(),
		FileName: fileName,
		Size:     int64(len(payload)),
		Payload:  payload,
	}
}

// ProcessedFileRecord is the metadata handed to the persistence collaborator
// after a document has been analyzed.
type ProcessedFileRecord struct {
	ID           uuid.UUID `json:"id"`
	DocumentID   uuid.UUID `json:"document_id"`
	FileName     string    `json:"file_name"`
	SizeBytes    int64     `json:"size_bytes"`
	Fingerprint  string    `json:"fingerprint"`
	RowCount     int       `json:"row_count"`
	WarningCount int       `json:"warning_count"`
	CacheHit     bool      `json:"cache_hit"`
	CreatedAt    time.Time `json:"created_at"`
}
