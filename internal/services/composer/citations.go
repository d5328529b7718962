package composer

import "github.com/ternarybob/scrutor/internal/models"

// BuildCitations assigns 1-based markers to passages in order. The mapping
// is a pure function of the passage list, so [N] in the generated answer
// always resolves to the same document span regardless of what the model
// actually wrote.
func BuildCitations(passages []models.RetrievedPassage) []models.Citation {
	if len(passages) == 0 {
		return nil
	}
	citations := make([]models.Citation, len(passages))
	for i, p := range passages {
		citations[i] = models.Citation{
			Marker:       i + 1,
			ChunkID:      p.ChunkID,
			DocumentID:   p.DocumentID,
			DocumentName: p.DocumentName,
			StartOffset:  p.StartOffset,
			EndOffset:    p.EndOffset,
		}
	}
	return citations
}
