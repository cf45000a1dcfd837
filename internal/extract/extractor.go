package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/telemetry"
)

// Text sources reported in Result.Source.
const (
	SourceTextLayer = "text-layer"
	SourceOCR       = "ocr"
)

// OCR recognizes text in an image-only document.
type OCR interface {
	Recognize(ctx context.Context, data []byte, fileName, mimeType string) (string, error)
}

// NoTextError is returned when neither the text layer nor OCR produced any text.
type NoTextError struct {
	Bytes int
	Name  string
	Ext   string
	Mime  string
}

func (e *NoTextError) Error() string {
	return fmt.Sprintf("no extractable text (name=%s ext=%s mime=%s bytes=%d)", e.Name, e.Ext, e.Mime, e.Bytes)
}

// Result is the text pulled from an upload and where it came from.
type Result struct {
	Text   string
	Source string
}

// Extractor reads the document text layer and falls back to OCR when it is empty.
// A nil OCR disables the fallback.
type Extractor struct {
	OCR OCR
}

// Extract returns the document text or a *NoTextError when nothing could be read.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType, fileName string) (Result, error) {
	text, err := ExtractTextFromBytes(ctx, data, mimeType, fileName)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(text) != "" {
		return Result{Text: text, Source: SourceTextLayer}, nil
	}

	if e != nil && e.OCR != nil {
		ocrText, ocrErr := e.OCR.Recognize(ctx, data, fileName, mimeType)
		ocrText = stripNUL(ocrText)
		switch {
		case ocrErr != nil:
			metrics.IncOCR(metrics.OutcomeError)
			telemetry.Warn("extract.ocr_failed", map[string]any{
				"name":  fileName,
				"mime":  mimeType,
				"bytes": len(data),
				"err":   ocrErr,
			})
		case strings.TrimSpace(ocrText) == "":
			metrics.IncOCR(metrics.OutcomeEmpty)
		default:
			metrics.IncOCR(metrics.OutcomeOK)
			return Result{Text: ocrText, Source: SourceOCR}, nil
		}
	}

	return Result{}, &NoTextError{
		Bytes: len(data),
		Name:  fileName,
		Ext:   strings.ToLower(filepath.Ext(fileName)),
		Mime:  mimeType,
	}
}
