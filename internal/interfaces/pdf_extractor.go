package interfaces

import (
	"context"
)

// PDFExtractor extracts plain text from uploaded PDF bytes. Extraction
// yielding no usable text is reported as models.ErrExtractionFailed.
type PDFExtractor interface {
	ExtractText(ctx context.Context, pdfData []byte) (string, error)
}
