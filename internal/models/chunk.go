package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Chunk is a bounded contiguous span of a document's text, the atomic unit
// of retrieval. Invariant: Text == Document.Text[StartOffset:EndOffset].
type Chunk struct {
	ID         string `json:"id"`          // <document_id>:<seq>
	DocumentID string `json:"document_id"`
	Text       string `json:"text"`

	// Byte offsets into the owning document's text, for citation.
	StartOffset int `json:"start_offset"`
	EndOffset   int `json:"end_offset"`

	// Seq orders chunks within a document.
	Seq int `json:"seq"`
}

// ChunkID builds the stable chunk identifier from its document and sequence.
func ChunkID(documentID string, seq int) string {
	return documentID + ":" + strconv.Itoa(seq)
}

// ParseChunkID splits a chunk identifier into document ID and sequence index.
func ParseChunkID(chunkID string) (documentID string, seq int, err error) {
	i := strings.LastIndex(chunkID, ":")
	if i < 0 {
		return "", 0, fmt.Errorf("malformed chunk id %q", chunkID)
	}
	seq, err = strconv.Atoi(chunkID[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed chunk id %q: %w", chunkID, err)
	}
	return chunkID[:i], seq, nil
}

// IndexEntry is the persisted unit inside the vector index: a chunk's
// embedding plus the minimal metadata needed for ranking and citation.
// Embeddings are stored as float32 slices at full precision; the same
// values are used for similarity computation.
type IndexEntry struct {
	ChunkID      string    `json:"chunk_id"`
	DocumentID   string    `json:"document_id"`
	DocumentName string    `json:"document_name"`
	StartOffset  int       `json:"start_offset"`
	EndOffset    int       `json:"end_offset"`
	Seq          int       `json:"seq"`
	Embedding    []float32 `json:"embedding"`
}

// RetrievedPassage is one ranked candidate in a retrieval result.
type RetrievedPassage struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Score        float64 `json:"score"`
	StartOffset  int     `json:"start_offset"`
	EndOffset    int     `json:"end_offset"`
	Text         string  `json:"text"`
}

// Citation maps an in-answer marker back to a document span so a UI can
// render "source N -> this span of this document" without re-querying.
type Citation struct {
	Marker       int    `json:"marker"` // 1-based, matches [N] in the answer
	ChunkID      string `json:"chunk_id"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	StartOffset  int    `json:"start_offset"`
	EndOffset    int    `json:"end_offset"`
}

// Answer is a composed response with its citation mapping. Citations are a
// pure function of the passages handed to the composer, independent of the
// generated text beyond the marker indices assigned in order.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
	Model     string     `json:"model"`
}
