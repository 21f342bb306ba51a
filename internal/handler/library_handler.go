package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mslide/internal/pkg/errcode"
	"github.com/xxxsen/mslide/internal/pkg/response"
	"github.com/xxxsen/mslide/internal/service"
)

type LibraryHandler struct {
	library *service.LibraryService
}

func NewLibraryHandler(library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

type librarySaveRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	DeckID      string               `json:"deck_id"`
	SlideIDs    []string             `json:"slide_ids"`
	Slides      []service.SlideInput `json:"slides"`
}

type libraryInstantiateRequest struct {
	Title string `json:"title"`
}

func (h *LibraryHandler) Save(c *gin.Context) {
	var req librarySaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Name == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "name required")
		return
	}
	item, err := h.library.Save(c.Request.Context(), getUserID(c), service.LibrarySaveInput{
		Name:        req.Name,
		Description: req.Description,
		DeckID:      req.DeckID,
		SlideIDs:    req.SlideIDs,
		Slides:      req.Slides,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, item)
}

func (h *LibraryHandler) List(c *gin.Context) {
	limit := uint(0)
	offset := uint(0)
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = uint(parsed)
		}
	}
	if value := c.Query("offset"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			offset = uint(parsed)
		}
	}
	items, err := h.library.List(c.Request.Context(), getUserID(c), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *LibraryHandler) Get(c *gin.Context) {
	item, err := h.library.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, item)
}

func (h *LibraryHandler) Delete(c *gin.Context) {
	if err := h.library.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *LibraryHandler) Instantiate(c *gin.Context) {
	var req libraryInstantiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	detail, err := h.library.Instantiate(c.Request.Context(), getUserID(c), c.Param("id"), req.Title)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}
