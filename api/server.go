package api

import (
	"writecorpus/importer"

	"github.com/gin-gonic/gin"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(imp *importer.Importer) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterImportRoutes(r, imp)
	RegisterRecordRoutes(r, imp)
	RegisterHealthRoutes(r)
	return r
}
