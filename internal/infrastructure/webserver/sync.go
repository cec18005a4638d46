package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// syncHistoryLimit caps how many run summaries the admin UI receives.
const syncHistoryLimit = 20

// handlePromiseSync triggers one promise ingestion run and returns its
// summary. Runs are serialized; a second trigger while one is in flight is
// rejected rather than queued.
func (s *Server) handlePromiseSync(c *gin.Context) {
	if !s.syncMu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "A sync run is already in progress"})
		return
	}
	defer s.syncMu.Unlock()

	result := s.promiseSync.Sync(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// handleIncidentSync triggers one incident ingestion run.
func (s *Server) handleIncidentSync(c *gin.Context) {
	if !s.syncMu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "A sync run is already in progress"})
		return
	}
	defer s.syncMu.Unlock()

	result := s.incidentSync.Sync(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

// handleSyncHistory serves recent run summaries, newest first.
func (s *Server) handleSyncHistory(c *gin.Context) {
	logs, err := s.logs.Recent(c.Request.Context(), syncHistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": logs})
}
