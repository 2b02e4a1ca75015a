package frontend

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/student-risk-meter/internal/errors"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/security"
)

// apiPrefixes never fall back to the dashboard page
var apiPrefixes = []string{"/api/", "/data/", "/metrics", "/swagger/"}

// NewSPAHandler serves static files from distFS and renders index.html for
// every other page path, so client-side routes survive a reload
func NewSPAHandler(distFS fs.FS) (gin.HandlerFunc, error) {
	indexTemplate, err := LoadIndexTemplate(distFS)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}
	fileServer := http.FileServer(http.FS(distFS))

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, prefix := range apiPrefixes {
			if strings.HasPrefix(path, prefix) {
				apperrors.Respond(c, apperrors.NewNotFoundError("Route", path, nil))
				return
			}
		}

		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.AbortWithStatus(http.StatusMethodNotAllowed)
			return
		}

		if strings.HasPrefix(path, "/assets/") {
			c.Header("Cache-Control", "public, max-age=3600")
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}

		cleanPath := strings.TrimPrefix(path, "/")
		if cleanPath != "" && cleanPath != "index.html" {
			if info, err := fs.Stat(distFS, cleanPath); err == nil && !info.IsDir() {
				fileServer.ServeHTTP(c.Writer, c.Request)
				return
			}
		}

		nonce := security.GetNonce(c)
		if nonce == "" {
			nonce, err = security.GenerateNonce()
			if err != nil {
				apperrors.Respond(c, apperrors.NewInternalError("nonce generation failed", err))
				return
			}
		}

		if err := RenderIndex(c, indexTemplate, nonce); err != nil {
			slog.Error("Failed to render index.html", "error", err, "path", path)
			apperrors.Respond(c, apperrors.NewInternalError("failed to render page", err))
		}
	}, nil
}
