package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vrp-import/internal/pipeline"
	"vrp-import/internal/transform"
)

// Options configures the HTTP surface.
type Options struct {
	// Export holds the enrichment defaults; query parameters override them.
	Export transform.ExportOptions
	Logger *zap.Logger
}

type server struct {
	importer       *pipeline.Importer
	exportDefaults transform.ExportOptions
	logger         *zap.Logger
}

// NewRouter builds the gin engine serving im.
func NewRouter(im *pipeline.Importer, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &server{importer: im, exportDefaults: opts.Export, logger: opts.Logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger))

	router.GET("/healthz", s.health)

	v1 := router.Group("/api/v1")
	{
		imports := v1.Group("/imports")
		{
			imports.POST("/:table/plan", s.planImport)
			imports.POST("/:table", s.commitImport)
		}

		v1.POST("/columns/:table/map", s.mapColumns)
		v1.GET("/templates/:table", s.template)
		v1.POST("/exports/:table", s.exportRows)
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
