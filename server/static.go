package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupFrontend serves the built chat UI with an SPA fallback
func (s *Server) setupFrontend() {
	dir := s.cfg.FrontendDir
	if dir == "" {
		return
	}

	// Assets with content hash (immutable, cache for 1 year)
	s.router.GET("/assets/*filepath", serveAssets(filepath.Join(dir, "assets"), "public, max-age=31536000, immutable"))

	// Individual static files
	s.router.GET("/favicon.ico", serveStaticFile(filepath.Join(dir, "favicon.ico"), "image/x-icon"))
	s.router.GET("/robots.txt", serveRobotsTxt())

	// SPA fallback - serve index.html for non-API routes
	index := filepath.Join(dir, "index.html")
	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Route not found"}})
			return
		}
		if _, err := os.Stat(index); err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.File(index)
	})
}

// serveAssets serves files under basePath with the given cache policy
func serveAssets(basePath, cacheControl string) gin.HandlerFunc {
	return func(c *gin.Context) {
		filePath := c.Param("filepath")

		// Security: prevent path traversal
		if strings.Contains(filePath, "..") {
			c.Status(http.StatusForbidden)
			return
		}

		fullPath := filepath.Join(basePath, filePath)
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			c.Status(http.StatusNotFound)
			return
		}

		c.Header("Cache-Control", cacheControl)
		c.File(fullPath)
	}
}

// serveStaticFile serves a specific static file with caching
func serveStaticFile(filePath string, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			c.Status(http.StatusNotFound)
			return
		}

		c.Header("Cache-Control", "public, max-age=86400, must-revalidate")
		if contentType != "" {
			c.Header("Content-Type", contentType)
		}
		c.File(filePath)
	}
}

// serveRobotsTxt keeps crawlers out of the API
func serveRobotsTxt() gin.HandlerFunc {
	return func(c *gin.Context) {
		robotsTxt := `User-agent: *
Allow: /

# Disallow API endpoints
Disallow: /api/
`
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Cache-Control", "public, max-age=86400")
		c.String(http.StatusOK, robotsTxt)
	}
}
