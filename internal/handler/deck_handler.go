package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mslide/internal/model"
	"github.com/xxxsen/mslide/internal/pkg/errcode"
	"github.com/xxxsen/mslide/internal/pkg/response"
	"github.com/xxxsen/mslide/internal/service"
)

type DeckHandler struct {
	decks *service.DeckService
}

func NewDeckHandler(decks *service.DeckService) *DeckHandler {
	return &DeckHandler{decks: decks}
}

type deckCreateRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Theme       string               `json:"theme"`
	Slides      []service.SlideInput `json:"slides"`
}

type deckSettingsRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
}

type replaceSlidesRequest struct {
	Slides []service.SlideInput `json:"slides"`
}

func (h *DeckHandler) Create(c *gin.Context) {
	var req deckCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Title == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "title required")
		return
	}
	detail, err := h.decks.Create(c.Request.Context(), getUserID(c), service.DeckCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Theme:       req.Theme,
		Slides:      req.Slides,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *DeckHandler) List(c *gin.Context) {
	query := c.Query("q")
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
	page, err := h.decks.List(c.Request.Context(), getUserID(c), query, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, page)
}

func (h *DeckHandler) Get(c *gin.Context) {
	detail, err := h.decks.Get(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *DeckHandler) UpdateSettings(c *gin.Context) {
	var req deckSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Title == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "title required")
		return
	}
	deck, err := h.decks.UpdateSettings(c.Request.Context(), getUserID(c), c.Param("id"), model.DeckSettings{
		Title:       req.Title,
		Description: req.Description,
		Theme:       req.Theme,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, deck)
}

func (h *DeckHandler) ReplaceSlides(c *gin.Context) {
	var req replaceSlidesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	slides, err := h.decks.ReplaceSlides(c.Request.Context(), getUserID(c), c.Param("id"), req.Slides)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"slides": slides})
}

func (h *DeckHandler) Delete(c *gin.Context) {
	if err := h.decks.Delete(c.Request.Context(), getUserID(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
