package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filedrop-backend/models"
	"filedrop-backend/service"
)

type fakeLifecycle struct {
	storeResult   *service.StoreResult
	storeErr      error
	storedName    string
	storedContent []byte

	consumeResult *service.ConsumeResult
	consumeErr    error
	consumedID    string
}

func (f *fakeLifecycle) Store(ctx context.Context, req service.StoreRequest) (*service.StoreResult, error) {
	f.storedName = req.Filename
	f.storedContent, _ = io.ReadAll(req.Content)
	return f.storeResult, f.storeErr
}

func (f *fakeLifecycle) Consume(ctx context.Context, id string) (*service.ConsumeResult, error) {
	f.consumedID = id
	return f.consumeResult, f.consumeErr
}

func newTestRouter(transfer Lifecycle) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewFileHandler(transfer)
	r.POST("/upload", h.UploadFile)
	r.GET("/download/:id", h.DownloadFile)
	return r
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	transfer := &fakeLifecycle{
		storeResult: &service.StoreResult{ID: "123456", QRCode: "data:image/png;base64,abc"},
	}
	router := newTestRouter(transfer)

	body, contentType := multipartUpload(t, "file", "a.txt", []byte("0123456789"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "123456", resp["fileId"])
	assert.Equal(t, "data:image/png;base64,abc", resp["qrCode"])

	assert.Equal(t, "a.txt", transfer.storedName)
	assert.Equal(t, []byte("0123456789"), transfer.storedContent)
}

func TestUploadFileMissingField(t *testing.T) {
	router := newTestRouter(&fakeLifecycle{})

	body, contentType := multipartUpload(t, "attachment", "a.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "No file uploaded"}`, w.Body.String())
}

func TestUploadFileServiceFailure(t *testing.T) {
	transfer := &fakeLifecycle{storeErr: errors.New("db down")}
	router := newTestRouter(transfer)

	body, contentType := multipartUpload(t, "file", "a.txt", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	// Internal detail never leaks to the client
	assert.JSONEq(t, `{"error": "Error uploading file"}`, w.Body.String())
}

func TestDownloadFile(t *testing.T) {
	transfer := &fakeLifecycle{
		consumeResult: &service.ConsumeResult{Content: []byte("payload"), Filename: "a.txt"},
	}
	router := newTestRouter(transfer)

	req := httptest.NewRequest(http.MethodGet, "/download/123456", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payload", w.Body.String())
	assert.Equal(t, `attachment; filename="a.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "123456", transfer.consumedID)
}

func TestDownloadFileNotFound(t *testing.T) {
	transfer := &fakeLifecycle{consumeErr: models.ErrNotFound}
	router := newTestRouter(transfer)

	req := httptest.NewRequest(http.MethodGet, "/download/000000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "File not found"}`, w.Body.String())
}

func TestDownloadFileServiceFailure(t *testing.T) {
	transfer := &fakeLifecycle{consumeErr: errors.New("storage unreachable")}
	router := newTestRouter(transfer)

	req := httptest.NewRequest(http.MethodGet, "/download/123456", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "Error retrieving file"}`, w.Body.String())
}
