package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mslide/internal/service"
)

type ExportHandler struct {
	export *service.ExportService
}

func NewExportHandler(export *service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// ExportMarkdown renders the deck, or one of its versions when
// version_id is given, as a markdown attachment.
func (h *ExportHandler) ExportMarkdown(c *gin.Context) {
	content, filename, err := h.export.ExportMarkdown(c.Request.Context(), getUserID(c), c.Param("id"), c.Query("version_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	const contentType = "text/markdown; charset=utf-8"
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, content)
}
