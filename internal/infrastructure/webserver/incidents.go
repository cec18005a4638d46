package webserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"truthtracker/internal/domain"
)

type incidentBatchRequest struct {
	Source    string           `json:"source"`
	Incidents []map[string]any `json:"incidents"`
}

// handleIncidentBatch appends an externally submitted batch of raw
// incidents with a receipt timestamp.
func (s *Server) handleIncidentBatch(c *gin.Context) {
	var req incidentBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Source == "" || req.Incidents == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	batch := domain.IncidentBatch{
		ID:        uuid.NewString(),
		Source:    req.Source,
		Incidents: req.Incidents,
		FetchedAt: time.Now().UTC(),
	}
	if err := s.incidents.AppendBatch(c.Request.Context(), batch); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to append incident batch", "source", req.Source, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleListVerified serves the public incident listing. Only records that
// cleared human review are ever returned here.
func (s *Server) handleListVerified(c *gin.Context) {
	incidents, err := s.incidents.Verified(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"incidents": incidents})
}

// handleListPending serves the review queue for the admin UI.
func (s *Server) handleListPending(c *gin.Context) {
	incidents, err := s.incidents.Pending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"incidents": incidents})
}

// handleApprove promotes one pending incident to the verified collection.
func (s *Server) handleApprove(c *gin.Context) {
	id := c.Param("id")
	if err := s.incidents.Promote(c.Request.Context(), id); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to approve incident", "id", id, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve incident"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleReject deletes one pending incident.
func (s *Server) handleReject(c *gin.Context) {
	id := c.Param("id")
	if err := s.incidents.DeletePending(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject incident"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
