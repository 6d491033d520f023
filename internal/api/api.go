// internal/api/api.go
package api

import (
	"net/url"
	"strings"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/api/handlers"
	"github.com/electroitzone/report-dashboard/backend-go/internal/api/middleware"
	"github.com/electroitzone/report-dashboard/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const defaultMaxBodyBytes = 1 << 20

type Services struct {
	Store   *service.StoreService
	Reports *service.ReportService
	Auth    *service.AuthService
}

type Options struct {
	AllowedOrigins []string
	MaxBodyBytes   int64
	QueryEnabled   bool
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	limit := opts.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	router.Use(middleware.BodyLimit(limit))

	if services == nil || services.Store == nil {
		return router
	}

	storeName := services.Store.StoreName()
	storeHandler := handlers.NewStoreHandler(services.Store)
	router.GET("/health", storeHandler.Health)

	apiGroup := router.Group("/api")
	apiGroup.GET("/store", storeHandler.GetStore)

	if services.Auth != nil {
		authHandler := handlers.NewAuthHandler(services.Auth, storeName)
		apiGroup.POST("/login", authHandler.Login)
	}

	protected := apiGroup.Group("")
	if services.Auth != nil && services.Auth.Enabled() {
		protected.Use(middleware.RequireAuth(services.Auth))
	}
	{
		protected.GET("/dashboard", storeHandler.GetDashboard)
		protected.POST("/exec", storeHandler.Exec)
		if opts.QueryEnabled {
			protected.POST("/query", storeHandler.Query)
		}
	}

	if services.Reports != nil {
		reportHandler := handlers.NewReportHandler(services.Reports, storeName)
		protected.GET("/reports", reportHandler.ListReports)
		protected.POST("/reports/:key/run", reportHandler.RunReport)
		protected.POST("/reports/:key/export", reportHandler.ExportReport)
		protected.GET("/dropdowns", reportHandler.GetDropdowns)
		protected.GET("/todos/:todono/transactions", reportHandler.GetTodoTransactions)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	origins, allowAll := normalizeAllowedOrigins(allowedOrigins)
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	cfg.AllowOriginFunc = func(origin string) bool {
		if allowAll || isLocalOrigin(origin) {
			return true
		}
		_, ok := allowed[strings.TrimSuffix(origin, "/")]
		return ok
	}
	return cfg
}

// isLocalOrigin accepts any port on localhost for development front ends.
func isLocalOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1"
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSuffix(strings.TrimSpace(part), "/")
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
