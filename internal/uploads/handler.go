package uploads

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-review/internal/extract"
	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/shared/server/respond"
	"resume-review/internal/shared/telemetry"
	"resume-review/internal/shared/util"
)

const (
	defaultMaxUploadBytes = 8 << 20
	// multipartOverhead covers boundaries and part headers around the file.
	multipartOverhead     = 64 << 10
	formField             = "file"

	noTextHint = "The file looks scanned or image-only. Enable OCR on the server or upload a text-based PDF/DOCX."
)

// Handler extracts text from a single uploaded document.
type Handler struct {
	Extractor *extract.Extractor
	MaxBytes  int64
}

// NewHandler constructs a Handler. A non-positive maxBytes uses the 8 MiB default.
func NewHandler(ex *extract.Extractor, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	if ex == nil {
		ex = &extract.Extractor{}
	}
	return &Handler{Extractor: ex, MaxBytes: maxBytes}
}

// RegisterRoutes attaches the upload route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes+multipartOverhead)

	fh, err := c.FormFile(formField)
	if err != nil {
		if isTooLarge(err) {
			h.tooLarge(c, err)
			return
		}
		metrics.IncUpload(metrics.OutcomeInvalid, "")
		respond.Error(c, http.StatusBadRequest, "No file uploaded", err, nil)
		return
	}
	if fh.Size > h.MaxBytes {
		h.tooLarge(c, nil)
		return
	}

	f, err := fh.Open()
	if err != nil {
		metrics.IncUpload(metrics.OutcomeError, "")
		respond.Error(c, http.StatusInternalServerError, "Failed to parse file", err, nil)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.MaxBytes+1))
	if err != nil {
		metrics.IncUpload(metrics.OutcomeError, "")
		respond.Error(c, http.StatusInternalServerError, "Failed to parse file", err, nil)
		return
	}
	if int64(len(data)) > h.MaxBytes {
		h.tooLarge(c, nil)
		return
	}

	name := util.CleanFileName(fh.Filename)
	mimeType := fh.Header.Get("Content-Type")
	c.Set(middleware.UploadNameKey, name)
	c.Set(middleware.UploadBytesKey, len(data))

	res, err := h.Extractor.Extract(c.Request.Context(), data, mimeType, name)
	if err != nil {
		h.extractFailed(c, err)
		return
	}

	c.Set(middleware.TextSourceKey, res.Source)
	metrics.IncUpload(metrics.OutcomeOK, res.Source)
	telemetry.Info("upload.extracted", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"name":       name,
		"mime":       mimeType,
		"bytes":      len(data),
		"chars":      len(res.Text),
		"source":     res.Source,
		"sha256":     util.ContentDigest(data),
	})
	respond.OK(c, gin.H{"text": res.Text})
}

func (h *Handler) extractFailed(c *gin.Context, err error) {
	var noText *extract.NoTextError
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		metrics.IncUpload(metrics.OutcomeUnsupported, "")
		respond.Error(c, http.StatusBadRequest, "Unsupported file type", err, nil)
	case errors.Is(err, extract.ErrCorruptDocument):
		metrics.IncUpload(metrics.OutcomeInvalid, "")
		respond.Error(c, http.StatusBadRequest, "Unable to read file", err, nil)
	case errors.As(err, &noText):
		metrics.IncUpload(metrics.OutcomeNoText, "")
		respond.Error(c, http.StatusUnprocessableEntity, "No extractable text found", err, gin.H{
			"hint":  noTextHint,
			"bytes": noText.Bytes,
			"name":  noText.Name,
			"ext":   noText.Ext,
			"mime":  noText.Mime,
		})
	default:
		metrics.IncUpload(metrics.OutcomeError, "")
		respond.Error(c, http.StatusInternalServerError, "Failed to parse file", err, nil)
	}
}

func (h *Handler) tooLarge(c *gin.Context, cause error) {
	metrics.IncUpload(metrics.OutcomeTooLarge, "")
	respond.Error(c, http.StatusRequestEntityTooLarge, "File too large", cause, gin.H{"limitBytes": h.MaxBytes})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// multipart does not always wrap the reader error.
	return strings.Contains(err.Error(), "request body too large")
}
