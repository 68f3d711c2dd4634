package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"nyayamitra-backend/models"
	"nyayamitra-backend/service"
	"nyayamitra-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles HTTP requests for uploaded legal documents. An
// upload is archived to storage and indexed in one request.
type DocumentHandler struct {
	ingestService *service.IngestService
	storage       storage.Storage
	production    bool
	maxFileSize   int64
	allowedExts   map[string]bool
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(ingestService *service.IngestService, store storage.Storage, production bool) *DocumentHandler {
	return &DocumentHandler{
		ingestService: ingestService,
		storage:       store,
		production:    production,
		maxFileSize:   10 * 1024 * 1024, // 10MB
		allowedExts: map[string]bool{
			".txt":  true,
			".md":   true,
			".csv":  true,
			".json": true,
		},
	}
}

// Upload handles POST /api/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !h.allowedExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: TXT, MD, CSV, JSON",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": h.errorMessage(err, "Could not open uploaded file"),
			},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_READ_ERROR",
				"message": h.errorMessage(err, "Could not read uploaded file"),
			},
		})
		return
	}

	if !utf8.Valid(data) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ENCODING",
				"message": "File must be valid UTF-8 text",
			},
		})
		return
	}

	// Archive the original before indexing so a copy survives reindexing.
	docID := uuid.New()
	storagePath, err := h.storage.Upload(c.Request.Context(), docID, fileHeader.Filename, bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": h.errorMessage(err, "Failed to store the document"),
			},
		})
		return
	}

	report, err := h.ingestService.IngestUpload(c.Request.Context(), fileHeader.Filename, string(data))
	if err != nil {
		// Remove the archived copy so a failed upload leaves nothing behind
		h.storage.Delete(c.Request.Context(), storagePath)

		if errors.Is(err, service.ErrIngestInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INGEST_IN_PROGRESS",
					"message": "An ingestion run is already in progress",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INGEST_FAILED",
				"message": h.errorMessage(err, "Failed to index the document"),
			},
		})
		return
	}

	doc := models.DocumentInfo{
		ID:          docID,
		FileName:    fileHeader.Filename,
		SizeBytes:   fileHeader.Size,
		StoragePath: storagePath,
		UploadedAt:  time.Now().UTC(),
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"document": doc,
			"chunks":   report.TotalChunks,
			"indexed":  report.TotalIndexed,
			"errors":   report.Errors,
		},
	})
}

func (h *DocumentHandler) errorMessage(err error, fallback string) string {
	if h.production {
		return fallback
	}
	return err.Error()
}
