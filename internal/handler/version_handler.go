package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mslide/internal/pkg/errcode"
	"github.com/xxxsen/mslide/internal/pkg/response"
	"github.com/xxxsen/mslide/internal/service"
)

type VersionHandler struct {
	versions *service.VersionService
}

func NewVersionHandler(versions *service.VersionService) *VersionHandler {
	return &VersionHandler{versions: versions}
}

type createVersionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsAutoSave  bool   `json:"is_auto_save"`
}

type milestoneRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type branchRequest struct {
	Name string `json:"name"`
}

func (h *VersionHandler) Create(c *gin.Context) {
	var req createVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	version, err := h.versions.CreateVersion(c.Request.Context(), getUserID(c), c.Param("id"), service.CreateVersionInput{
		Name:        req.Name,
		Description: req.Description,
		IsAutoSave:  req.IsAutoSave,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, version)
}

func (h *VersionHandler) List(c *gin.Context) {
	input := service.ListVersionsInput{
		IncludeAutoSaves: c.Query("include_auto_saves") == "1",
		MilestonesOnly:   c.Query("milestones_only") == "1",
	}
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			input.Limit = uint(parsed)
		}
	}
	if value := c.Query("offset"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			input.Offset = uint(parsed)
		}
	}
	page, err := h.versions.ListVersions(c.Request.Context(), getUserID(c), c.Param("id"), input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, page)
}

func (h *VersionHandler) Get(c *gin.Context) {
	version, err := h.versions.GetVersion(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("version_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, version)
}

func (h *VersionHandler) Restore(c *gin.Context) {
	result, err := h.versions.RestoreVersion(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("version_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *VersionHandler) Compare(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "from and to required")
		return
	}
	comparison, err := h.versions.CompareVersions(c.Request.Context(), getUserID(c), c.Param("id"), from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, comparison)
}

func (h *VersionHandler) MarkMilestone(c *gin.Context) {
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Name == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "name required")
		return
	}
	version, err := h.versions.MarkMilestone(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("version_id"), service.MarkMilestoneInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, version)
}

func (h *VersionHandler) CreateBranch(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Name == "" {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "name required")
		return
	}
	result, err := h.versions.CreateBranch(c.Request.Context(), getUserID(c), c.Param("id"), c.Param("version_id"), req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *VersionHandler) GetLineage(c *gin.Context) {
	lineage, err := h.versions.GetLineage(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, lineage)
}
