package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/crawler-api/app/auth"
	"github.com/lysyi3m/crawler-api/app/feed"
	"github.com/lysyi3m/crawler-api/app/identity"
	"github.com/lysyi3m/crawler-api/app/items"
)

func NewHandler(itemService *items.Service, importer *feed.Importer, accounts *identity.Accounts,
	tokens *auth.TokenService, version string) *Handler {
	return &Handler{
		items:    itemService,
		importer: importer,
		accounts: accounts,
		tokens:   tokens,
		version:  version,
	}
}

func NewServer(handler *Handler, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/api/health"},
	}))

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("Recovered from panic", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(500, messageResponse{Message: unexpectedMessage})
	}))

	r.Use(corsMiddleware(corsOrigins))

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	requireAuth := authMiddleware(handler.tokens)

	api := r.Group("/api")
	api.GET("/health", handler.GetHealth)

	account := api.Group("/auth")
	{
		account.POST("/register", handler.Register)
		account.POST("/login", handler.Login)
		account.GET("/me", requireAuth, handler.Me)
	}

	scraped := api.Group("/scraped-items", requireAuth)
	{
		scraped.GET("", handler.ListItems)
		scraped.GET("/:id", handler.GetItem)
		scraped.POST("", handler.CreateItem)
		scraped.POST("/import", handler.ImportFeed)
		scraped.PUT("/:id", handler.UpdateItem)
		scraped.DELETE("/:id", handler.DeleteItem)
	}
}
