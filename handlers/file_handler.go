package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"filedrop-backend/models"
	"filedrop-backend/service"
)

// Lifecycle is the slice of the transfer service the gateway needs
type Lifecycle interface {
	Store(ctx context.Context, req service.StoreRequest) (*service.StoreResult, error)
	Consume(ctx context.Context, id string) (*service.ConsumeResult, error)
}

// FileHandler handles HTTP requests for file transfer
type FileHandler struct {
	transfer Lifecycle
}

// NewFileHandler creates a new file handler
func NewFileHandler(transfer Lifecycle) *FileHandler {
	return &FileHandler{transfer: transfer}
}

// UploadFile handles POST /upload
func (h *FileHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Error opening uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading file"})
		return
	}
	defer file.Close()

	result, err := h.transfer.Store(c.Request.Context(), service.StoreRequest{
		Filename: fileHeader.Filename,
		Content:  file,
	})
	if err != nil {
		log.Printf("Error storing file %q: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fileId": result.ID,
		"qrCode": result.QRCode,
	})
}

// DownloadFile handles GET /download/:id. A successful response consumes
// the file: the same id can never be downloaded twice. Unknown, expired and
// already-consumed ids are indistinguishable on purpose.
func (h *FileHandler) DownloadFile(c *gin.Context) {
	id := c.Param("id")

	result, err := h.transfer.Consume(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		log.Printf("Error retrieving file %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error retrieving file"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, "application/octet-stream", result.Content)
}
