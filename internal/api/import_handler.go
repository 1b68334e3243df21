package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/editorial-lifecycle-api/internal/config"
	"github.com/editorial-lifecycle-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ImportHandler handles import endpoints
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// Import handles POST /v1/admin/import
// Accepts a multipart upload in field "file" or the JSON document as the body
func (h *ImportHandler) Import(c *gin.Context) {
	if limit := h.cfg.Import.MaxUploadSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "message": "upload exceeds maximum size"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "multipart upload must include a file field"})
			return
		}
		defer file.Close()
		h.log.Info().Str("filename", header.Filename).Int64("size", header.Size).Msg("Import upload received")
		body = file
	}

	ctx, cancel := contextWithTimeout(c, 2*time.Minute)
	defer cancel()

	result, err := h.services.Import.Import(ctx, body)
	if err != nil {
		switch {
		case isTooLarge(err):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "message": "upload exceeds maximum size"})
		case errors.Is(err, service.ErrImportShape):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		default:
			h.log.Error().Err(err).Msg("Import failed")
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Import completed",
		"result":  result,
	})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
