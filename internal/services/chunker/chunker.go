// -----------------------------------------------------------------------
// Chunker - splits extracted document text into overlapping passages
// with stable identifiers and byte offsets for citation
// -----------------------------------------------------------------------

package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/scrutor/internal/models"
)

// Config controls passage size and overlap, in bytes of UTF-8 text.
type Config struct {
	ChunkSize int
	Overlap   int
}

// breakWindowDivisor bounds the backward search for a natural breakpoint
// to the last fifth of a chunk. Beyond that a hard cut is preferred over
// a badly undersized passage.
const breakWindowDivisor = 5

// Split divides text into overlapping chunks with stable identifiers
// derived from documentID and the sequence index.
//
// Splitting is deterministic: identical input and configuration always
// produce identical chunks with identical offsets. Every byte of text is
// covered by at least one chunk, adjacent chunks overlap by at most
// cfg.Overlap bytes, and each chunk's text equals
// text[StartOffset:EndOffset] exactly. Boundaries prefer sentence and
// paragraph ends within the search window before falling back to a hard
// cut; the last chunk may be shorter than cfg.ChunkSize.
func Split(documentID, text string, cfg Config) ([]models.Chunk, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrInvalidConfiguration, cfg.ChunkSize)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be non-negative and less than chunk size %d", models.ErrInvalidConfiguration, cfg.Overlap, cfg.ChunkSize)
	}
	if text == "" {
		return nil, nil
	}

	var chunks []models.Chunk
	start := 0
	seq := 0
	for start < len(text) {
		end := start + cfg.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = adjustBoundary(text, start, end, cfg.Overlap)
		}

		chunks = append(chunks, models.Chunk{
			ID:          models.ChunkID(documentID, seq),
			DocumentID:  documentID,
			Text:        text[start:end],
			StartOffset: start,
			EndOffset:   end,
			Seq:         seq,
		})

		if end == len(text) {
			break
		}
		start = end - cfg.Overlap
		seq++
	}

	return chunks, nil
}

// adjustBoundary moves a prospective cut point to the nearest natural
// breakpoint (paragraph break, then sentence end) within the search
// window, falling back to a rune-aligned hard cut. The returned end always
// leaves the chunk longer than the overlap so the split makes progress.
func adjustBoundary(text string, start, end, overlap int) int {
	window := (end - start) / breakWindowDivisor
	minEnd := end - window
	// Never shrink a chunk to or below the overlap; the next chunk would
	// start at or before this one.
	if floor := start + overlap + 1; minEnd < floor {
		minEnd = floor
	}

	// Paragraph breaks are the strongest boundary.
	if i := strings.LastIndex(text[minEnd:end], "\n\n"); i >= 0 {
		return minEnd + i + 2
	}

	// Then sentence ends followed by whitespace.
	best := -1
	for i := minEnd; i < end-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' || text[i+1] == '\n' || text[i+1] == '\t' {
				best = i + 1
			}
		case '\n':
			best = i + 1
		}
	}
	if best > start {
		return best
	}

	// Hard cut, aligned backward to a rune boundary. Alignment is skipped
	// when it would stall the split (overlap within a few bytes of the
	// chunk size).
	hardEnd := end
	for end > start+1 && !utf8.RuneStart(text[end]) {
		end--
	}
	if end <= start+overlap {
		return hardEnd
	}
	return end
}
