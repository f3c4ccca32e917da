package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"writecorpus/importer"

	"github.com/gin-gonic/gin"
)

// RegisterImportRoutes registers the import trigger endpoint.
func RegisterImportRoutes(r *gin.Engine, imp *importer.Importer) {
	g := r.Group("/api/import")
	g.POST("", handleImport(imp))
}

// ImportRequest triggers an import run for one seed URL.
type ImportRequest struct {
	URL      string `json:"url" binding:"required"`
	MaxItems int    `json:"max_items"`
}

// handleImport runs an import synchronously, or in the background when
// ?async=true, mirroring how refresh triggers behave elsewhere.
func handleImport(imp *importer.Importer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if c.Query("async") == "true" {
			go func() {
				if _, err := imp.ImportFromURL(context.Background(), req.URL, req.MaxItems); err != nil {
					log.Printf("Background import of %s failed: %v", req.URL, err)
				}
			}()
			c.JSON(http.StatusAccepted, gin.H{"status": "import started"})
			return
		}

		summary, err := imp.ImportFromURL(c.Request.Context(), req.URL, req.MaxItems)
		if err != nil {
			if errors.Is(err, importer.ErrStorageFull) {
				// The run itself finished; report what was fetched
				// alongside the actionable storage error.
				c.JSON(http.StatusInsufficientStorage, gin.H{
					"error":   err.Error(),
					"summary": summary,
				})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}
