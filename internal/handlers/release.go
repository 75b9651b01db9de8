package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/visionforge/visionforge-backend/internal/platform/logger"
	"github.com/visionforge/visionforge-backend/internal/services"
	"github.com/visionforge/visionforge-backend/internal/types"
)

type ReleaseHandler struct {
	releases services.ReleaseService
	log      *logger.Logger
}

func NewReleaseHandler(releases services.ReleaseService, baseLog *logger.Logger) *ReleaseHandler {
	return &ReleaseHandler{
		releases: releases,
		log:      baseLog.With("handler", "ReleaseHandler"),
	}
}

type generateReleaseRequest struct {
	types.ReleaseConfig
	TransformationVersion string `json:"transformation_version"`
}

// POST /api/projects/:projectID/releases
func (h *ReleaseHandler) GenerateRelease(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}

	var req generateReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	req.ProjectID = projectID

	releaseID := uuid.New()

	// The pipeline itself is synchronous and blocking; the request thread
	// registers the id so it is pollable immediately, hands the work to a
	// background goroutine, and returns the id.
	h.releases.RegisterRelease(releaseID)
	go func() {
		if err := h.releases.GenerateRelease(context.Background(), releaseID, req.ReleaseConfig, req.TransformationVersion); err != nil {
			h.log.Error("Background release generation failed", "release_id", releaseID, "error", err)
		}
	}()

	RespondAccepted(c, gin.H{"release_id": releaseID})
}

// GET /api/releases/:id/progress
func (h *ReleaseHandler) GetProgress(c *gin.Context) {
	releaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_release_id", err)
		return
	}
	progress, ok := h.releases.GetProgress(releaseID)
	if !ok {
		RespondError(c, http.StatusNotFound, "release_not_found", nil)
		return
	}
	RespondOK(c, gin.H{"progress": progress})
}

// GET /api/projects/:projectID/releases
func (h *ReleaseHandler) GetHistory(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	history, err := h.releases.GetHistory(c.Request.Context(), projectID, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "history_load_failed", err)
		return
	}
	RespondOK(c, gin.H{"releases": history})
}

// DELETE /api/projects/:projectID/releases/:id
func (h *ReleaseHandler) CleanupFailedRelease(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("projectID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_project_id", err)
		return
	}
	releaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_release_id", err)
		return
	}
	h.releases.CleanupFailedRelease(c.Request.Context(), releaseID, projectID)
	RespondOK(c, gin.H{"cleaned": true})
}
