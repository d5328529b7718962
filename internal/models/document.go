package models

import "time"

// Document represents an ingested compliance document. Documents are
// immutable once registered; the only lifecycle transition is deletion,
// which also removes all derived chunks and index entries.
type Document struct {
	// Identity
	ID   string `json:"id"`   // doc_<uuid>
	Name string `json:"name"` // Display name (original filename)

	// Content: full extracted text. Chunk offsets index into this string.
	Text string `json:"text"`

	// Owner reference supplied by the caller (the core does not enforce
	// role checks; it only records the reference).
	Owner string `json:"owner,omitempty"`

	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentSummary is the listing view of a document, without the full text.
type DocumentSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Owner      string    `json:"owner,omitempty"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Summary returns the listing view of the document.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:         d.ID,
		Name:       d.Name,
		Owner:      d.Owner,
		ChunkCount: d.ChunkCount,
		UploadedAt: d.UploadedAt,
	}
}

// CorpusStats reports aggregate corpus state for the status endpoint.
type CorpusStats struct {
	TotalDocuments int       `json:"total_documents"`
	TotalChunks    int       `json:"total_chunks"`
	IndexEntries   int       `json:"index_entries"`
	LastUpdated    time.Time `json:"last_updated"`
}
