package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/editorial-lifecycle-api/internal/backup"
	"github.com/editorial-lifecycle-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles export and backup endpoints
type ExportHandler struct {
	services *service.Services
	backups  *backup.Tracker
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, backups *backup.Tracker, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		backups:  backups,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// Export handles GET /v1/admin/export
// Downloads every collection as one backup file
func (h *ExportHandler) Export(c *gin.Context) {
	filename := fmt.Sprintf("editorial-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	if err := h.services.Export.Export(c.Request.Context(), c.Writer); err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}

// ExportCollection handles GET /v1/admin/export/:collection?format=...
// Streams one collection directly to the response
func (h *ExportHandler) ExportCollection(c *gin.Context) {
	status, ok := parseCollection(c.Param("collection"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "collection must be one of: published, drafts, scheduled"})
		return
	}

	format := c.Query("format")
	if format == "" {
		format = "ndjson" // Default to NDJSON for streaming
	}
	if format != "ndjson" && format != "json" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "format must be one of: ndjson, json"})
		return
	}

	if err := h.services.Export.StreamCollection(c.Request.Context(), c.Writer, status, format); err != nil {
		h.log.Error().Err(err).Str("collection", string(status)).Msg("Export failed")
		return
	}
}

// BackupStatus handles GET /v1/admin/backup
func (h *ExportHandler) BackupStatus(c *gin.Context) {
	if h.backups == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "message": "backup tracking is not configured"})
		return
	}
	c.JSON(http.StatusOK, h.backups.Status(c.Request.Context()))
}
