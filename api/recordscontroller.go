package api

import (
	"net/http"

	"writecorpus/importer"

	"github.com/gin-gonic/gin"
)

// RegisterRecordRoutes registers record listing, export, and soft-delete.
func RegisterRecordRoutes(r *gin.Engine, imp *importer.Importer) {
	g := r.Group("/api/records")
	g.GET("", handleListRecords(imp))
	g.GET("/export", handleExportRecords(imp))
	// Identity keys are usually URLs, so the key rides in the query
	// string instead of the path.
	g.DELETE("", handleDeleteRecord(imp))
}

func handleListRecords(imp *importer.Importer) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := imp.Records(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"count":   len(records),
			"records": records,
		})
	}
}

func handleExportRecords(imp *importer.Importer) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := imp.ExportCSV(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="records.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(payload))
	}
}

func handleDeleteRecord(imp *importer.Importer) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("key")
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "identity key is required"})
			return
		}
		if err := imp.MarkDeleted(c.Request.Context(), key); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "key": key})
	}
}
