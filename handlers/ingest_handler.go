package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"nyayamitra-backend/config"
	"nyayamitra-backend/repository"
	"nyayamitra-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IngestHandler handles HTTP requests for corpus ingestion and index state
type IngestHandler struct {
	ingestService *service.IngestService
	runRepo       *repository.IngestRunRepository
	cfg           *config.Config
}

// NewIngestHandler creates a new ingest handler. runRepo may be nil when no
// database is configured; run history is then unavailable.
func NewIngestHandler(ingestService *service.IngestService, runRepo *repository.IngestRunRepository, cfg *config.Config) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		runRepo:       runRepo,
		cfg:           cfg,
	}
}

// TriggerIngest handles POST /api/ingest. The run is synchronous; the
// response is the full report including any failed batches.
func (h *IngestHandler) TriggerIngest(c *gin.Context) {
	var reqBody struct {
		ClearExisting bool `json:"clear_existing"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil && err != io.EOF {
		// JSON is optional, ignore binding errors if body is empty
	}

	if err := h.cfg.ValidateIngestion(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFIGURATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	report, err := h.ingestService.Run(c.Request.Context(), service.IngestOptions{
		ClearExisting: reqBody.ClearExisting,
	})
	if err != nil {
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
				"message": h.errorMessage(err, "Ingestion failed"),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// ListRuns handles GET /api/ingest/runs
func (h *IngestHandler) ListRuns(c *gin.Context) {
	if h.runRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "JOURNAL_DISABLED",
				"message": "Run history requires a configured database",
			},
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.runRepo.Latest(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RETRIEVAL_FAILED",
				"message": h.errorMessage(err, "Could not list ingestion runs"),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    runs,
	})
}

// GetRun handles GET /api/ingest/runs/:id
func (h *IngestHandler) GetRun(c *gin.Context) {
	if h.runRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "JOURNAL_DISABLED",
				"message": "Run history requires a configured database",
			},
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid run ID format",
			},
		})
		return
	}

	run, err := h.runRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Ingestion run not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    run,
	})
}

// IndexStats handles GET /api/index/stats
func (h *IngestHandler) IndexStats(c *gin.Context) {
	stats, err := h.ingestService.IndexStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATS_FAILED",
				"message": h.errorMessage(err, "Could not fetch index stats"),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

func (h *IngestHandler) errorMessage(err error, fallback string) string {
	if h.cfg.Production() {
		return fallback
	}
	return err.Error()
}
