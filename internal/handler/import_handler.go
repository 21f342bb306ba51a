package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mslide/internal/pkg/errcode"
	appErr "github.com/xxxsen/mslide/internal/pkg/errors"
	"github.com/xxxsen/mslide/internal/pkg/response"
	"github.com/xxxsen/mslide/internal/service"
)

type ImportHandler struct {
	imports       *service.ImportService
	maxUploadSize int64
}

func NewImportHandler(imports *service.ImportService, maxUploadSize int64) *ImportHandler {
	return &ImportHandler{imports: imports, maxUploadSize: maxUploadSize}
}

// ImportMarkdown accepts either a multipart "file" field or the raw
// request body as markdown source.
func (h *ImportHandler) ImportMarkdown(c *gin.Context) {
	source, err := h.readSource(c)
	if err != nil {
		return
	}
	detail, err := h.imports.ImportMarkdown(c.Request.Context(), getUserID(c), source)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *ImportHandler) readSource(c *gin.Context) ([]byte, error) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, err := c.FormFile("file")
		if err != nil {
			response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "file is required")
			return nil, err
		}
		if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
			response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "file too large (max "+formatUploadLimit(h.maxUploadSize)+")")
			return nil, appErr.ErrInvalid
		}
		switch strings.ToLower(filepath.Ext(file.Filename)) {
		case ".md", ".markdown", ".txt":
		default:
			response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "markdown file required")
			return nil, appErr.ErrInvalid
		}
		opened, err := file.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "failed to open file")
			return nil, err
		}
		defer opened.Close()
		data, err := io.ReadAll(opened)
		if err != nil {
			response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "failed to read file")
			return nil, err
		}
		return data, nil
	}
	data, err := c.GetRawData()
	if err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalidFile, "failed to read request body")
		return nil, err
	}
	if len(data) == 0 {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "markdown source required")
		return nil, appErr.ErrInvalid
	}
	return data, nil
}
