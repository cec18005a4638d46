package webserver

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"truthtracker/internal/source"
)

const relayUserAgent = "Mozilla/5.0 (compatible; Political-Truth-Tracker/1.0)"

// maxRelayBytes bounds how much of an upstream body is relayed, the same cap
// the internal fetchers apply to their own reads.
const maxRelayBytes = 4 << 20

// handleRelay proxies a feed fetch to an allow-listed destination. It exists
// so every outbound feed request funnels through one audited egress point
// instead of the service becoming an open proxy.
func (s *Server) handleRelay(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'url' query param"})
		return
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
		return
	}

	if !source.HostAllowed(s.allowedHosts, parsed.Hostname()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Host not allowed"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, parsed.String(), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	// Some feeds block non-browser user agents.
	req.Header.Set("User-Agent", relayUserAgent)

	resp, err := s.relayClient.Do(req)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("relay fetch failed", "url", parsed.String(), "error", err)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream fetch failed"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.JSON(resp.StatusCode, gin.H{"error": "Upstream HTTP " + resp.Status})
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRelayBytes))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to read upstream body"})
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}
