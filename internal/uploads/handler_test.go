package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-review/internal/extract"
	"resume-review/internal/extract/extracttest"
)

type fakeOCR struct {
	text  string
	calls int
}

func (f *fakeOCR) Recognize(context.Context, []byte, string, string) (string, error) {
	f.calls++
	return f.text, nil
}

func setupUploadRouter(t *testing.T, ocr extract.OCR, maxBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	NewHandler(&extract.Extractor{OCR: ocr}, maxBytes).RegisterRoutes(router.Group("/api"))
	return router
}

func multipartBody(t *testing.T, field, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postUpload(t *testing.T, router http.Handler, field, fileName, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, field, fileName, contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload), resp.Body.String())
	return payload
}

func TestUpload_PDFTextLayer(t *testing.T) {
	router := setupUploadRouter(t, nil, 0)

	resp := postUpload(t, router, "file", "resume.pdf", "application/pdf", extracttest.PDF("Jane Doe", "Staff Engineer"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	text, _ := decodeBody(t, resp)["text"].(string)
	assert.NotEmpty(t, strings.TrimSpace(text))
	assert.Contains(t, text, "Jane Doe")
	assert.NotContains(t, text, "\x00")
}

func TestUpload_DocxWithGenericMime(t *testing.T) {
	router := setupUploadRouter(t, nil, 0)

	resp := postUpload(t, router, "file", "resume.docx", "application/octet-stream", extracttest.DOCX("Jane Doe", "Go, Postgres"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Jane Doe\nGo, Postgres", decodeBody(t, resp)["text"])
}

func TestUpload_PlainText(t *testing.T) {
	router := setupUploadRouter(t, nil, 0)

	resp := postUpload(t, router, "file", "resume.txt", "text/plain", []byte("Jane\x00 Doe"))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Jane Doe", decodeBody(t, resp)["text"])
}

func TestUpload_NoTextWithOCRDisabled(t *testing.T) {
	router := setupUploadRouter(t, nil, 0)
	data := extracttest.PDF()

	resp := postUpload(t, router, "file", "scan.pdf", "application/pdf", data)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	payload := decodeBody(t, resp)
	assert.Equal(t, "No extractable text found", payload["error"])
	hint, _ := payload["hint"].(string)
	assert.Contains(t, hint, "Enable OCR")
	assert.Contains(t, hint, "text-based")
	assert.Equal(t, float64(len(data)), payload["bytes"])
	assert.Equal(t, "scan.pdf", payload["name"])
	assert.Equal(t, ".pdf", payload["ext"])
	assert.Equal(t, "application/pdf", payload["mime"])
}

func TestUpload_OCRFallback(t *testing.T) {
	ocr := &fakeOCR{text: "Scanned Jane Doe"}
	router := setupUploadRouter(t, ocr, 0)

	resp := postUpload(t, router, "file", "scan.pdf", "application/pdf", extracttest.PDF())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Scanned Jane Doe", decodeBody(t, resp)["text"])
	assert.Equal(t, 1, ocr.calls)
}

func TestUpload_MissingFile(t *testing.T) {
	router := setupUploadRouter(t, nil, 0)

	resp := postUpload(t, router, "resume", "resume.pdf", "application/pdf", extracttest.PDF("x"))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "No file uploaded", decodeBody(t, resp)["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_UnsupportedType(t *testing.T) {
	router := setupUploadRouter(t, &fakeOCR{text: "never"}, 0)

	resp := postUpload(t, router, "file", "photo.png", "image/png", []byte("\x89PNG\r\n\x1a\n0000"))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Unsupported file type", decodeBody(t, resp)["error"])
}

func TestUpload_CorruptDocument(t *testing.T) {
	router := setupUploadRouter(t, nil, 0)

	resp := postUpload(t, router, "file", "broken.pdf", "application/pdf", []byte("%PDF-1.7 truncated"))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	const limit = 1024

	t.Run("file over limit", func(t *testing.T) {
		router := setupUploadRouter(t, nil, limit)
		resp := postUpload(t, router, "file", "big.txt", "text/plain", bytes.Repeat([]byte("a"), limit+1))
		require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
		payload := decodeBody(t, resp)
		assert.Equal(t, "File too large", payload["error"])
		assert.Equal(t, float64(limit), payload["limitBytes"])
	})

	t.Run("body over transport limit", func(t *testing.T) {
		router := setupUploadRouter(t, nil, limit)
		resp := postUpload(t, router, "file", "huge.txt", "text/plain", bytes.Repeat([]byte("a"), multipartOverhead+4*limit))
		require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	})

	t.Run("file at limit", func(t *testing.T) {
		router := setupUploadRouter(t, nil, limit)
		resp := postUpload(t, router, "file", "ok.txt", "text/plain", bytes.Repeat([]byte("a"), limit))
		require.Equal(t, http.StatusOK, resp.Code)
	})
}

func TestUpload_CleansFileName(t *testing.T) {
	router := setupUploadRouter(t, nil, 0)

	resp := postUpload(t, router, "file", `C:\Users\jo\scan.pdf`, "application/pdf", extracttest.PDF())
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "scan.pdf", decodeBody(t, resp)["name"])
}
