package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"video-generation-orchestrator/application/ports/inbound"
	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/domain"
	"video-generation-orchestrator/infrastructure/gin_interface/dto"
	"video-generation-orchestrator/middleware"
)

type GenerationsController interface {
	StartGeneration(c *gin.Context)
	GetGeneration(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type generationsController struct {
	logger     outbound.LoggerPort
	submission inbound.SubmissionPort
}

func NewGenerationsController(logger outbound.LoggerPort,
	submission inbound.SubmissionPort) GenerationsController {
	return &generationsController{
		logger:     logger,
		submission: submission,
	}
}

// StartGeneration accepts the compact storyboard+assignments form; the
// service expands it into the full generation request before submitting.
func (g *generationsController) StartGeneration(c *gin.Context) {
	var request dto.StartGenerationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	assignments := make([]inbound.RoleAssignment, 0, len(request.Assignments))
	for _, assignment := range request.Assignments {
		assignments = append(assignments, inbound.RoleAssignment{
			RoleID:  assignment.RoleID,
			ActorID: assignment.ActorID,
		})
	}

	generationID, err := g.submission.StartGeneration(c.Request.Context(), inbound.StartGenerationParams{
		UserID:       userID,
		StoryboardID: request.StoryboardID,
		Assignments:  assignments,
	})
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		g.logger.Error(err, "failed to start generation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start video generation"})
		return
	}

	c.JSON(http.StatusCreated, dto.StartGenerationResponse{GenerationID: generationID})
}

// GetGeneration reads the job status for polling clients.
func (g *generationsController) GetGeneration(c *gin.Context) {
	generationID := c.Param("generationId")

	job, err := g.submission.Status(c.Request.Context(), generationID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "generation not found"})
			return
		}
		g.logger.Error(err, "failed to read generation status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read generation status"})
		return
	}

	userID := c.GetString(middleware.ContextUserIDKey)
	if job.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "generation not found"})
		return
	}

	c.JSON(http.StatusOK, dto.GenerationStatusResponse{
		GenerationID:     job.ID,
		Status:           string(job.Status),
		GeneratedAssetID: job.GeneratedAssetID,
		ErrorMessage:     job.ErrorMessage,
	})
}

func (g *generationsController) RegisterRoutes(engine *gin.Engine) {
	engine.POST("/generations", g.StartGeneration)
	engine.GET("/generations/:generationId", g.GetGeneration)
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
