package api

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	articlePath     = "/api/article"
)

// NewServer creates the HTTP engine. mcpHandler serves the tool protocol on
// /mcp and may be nil.
func NewServer(handler *Handler, mcpHandler http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(requestID())

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\" %s\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
				param.Request.Header.Get(RequestIDHeader),
			)
		},
	}))

	r.Use(gin.Recovery())

	r.Use(cors(articlePath))

	setupRoutes(r, handler, mcpHandler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, mcpHandler http.Handler) {
	if mcpHandler != nil {
		r.Any("/mcp", gin.WrapH(mcpHandler))
	}

	r.GET("/feeds/:source", handler.GetFeed)

	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(handler.GetMetrics()))

	api := r.Group("/api")
	{
		api.GET("/papers", handler.GetPapers)
		api.GET("/hackernews", handler.GetHackerNews)
		api.GET("/devto", handler.GetDevTo)
		api.GET("/news", handler.GetNews)
		api.GET("/dashboard", handler.GetDashboard)
		api.GET("/article", handler.GetArticle)
		api.GET("/feeds", handler.GetFeeds)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     ServerName,
			"version":     handler.version,
			"description": "AI news aggregation gateway over arXiv, Hacker News, DEV.to and AI organization feeds",
			"endpoints": map[string]string{
				"mcp":        "/mcp (POST, streamable HTTP)",
				"feed":       "/feeds/<source>",
				"health":     "/health",
				"metrics":    "/metrics",
				"papers":     "/api/papers",
				"hackernews": "/api/hackernews",
				"devto":      "/api/devto",
				"news":       "/api/news",
				"dashboard":  "/api/dashboard",
				"article":    "/api/article?url=<url>",
				"feeds":      "/api/feeds",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// requestID reuses the caller's X-Request-ID or assigns a new one, and
// echoes it on the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, id)
		}

		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// cors allows cross-origin access on every path except the private ones.
func cors(private ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(private, c.Request.URL.Path) {
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Mcp-Session-Id, Mcp-Protocol-Version, "+RequestIDHeader)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
