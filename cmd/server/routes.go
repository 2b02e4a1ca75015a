package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ZanzyTHEbar/student-risk-meter/docs"
	apperrors "github.com/ZanzyTHEbar/student-risk-meter/internal/errors"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/frontend"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/student-risk-meter/internal/security"
)

// router builds the gin engine with every route of the service
func (a *app) router() (*gin.Engine, error) {
	r := gin.New()

	r.Use(monitoring.RequestIDMiddleware())
	r.Use(apperrors.RecoveryHandler())
	r.Use(monitoring.MonitoringMiddleware(a.metrics, a.prom, a.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(a.logger))
	r.Use(apperrors.ErrorHandler())
	r.Use(security.SecurityHeadersMiddleware(a.security.Config().EnableHSTS))
	r.Use(security.CSPMiddleware(a.security.Config().CSPReportURI))
	r.Use(cors.New(a.corsConfig()))
	r.Use(a.compress.Handler())
	r.Use(a.security.RequestTimeout)
	r.Use(a.security.ValidateContentType)

	h := &handlers{app: a}

	r.GET("/health", h.health)
	r.GET("/metrics", h.stats)
	r.GET("/metrics/prometheus", gin.WrapH(a.prom.Handler()))

	docs.SwaggerInfo.Version = version
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.Use(a.profiles.Middleware())
	{
		api.GET("/student/:id", h.getStudent)
		api.GET("/generate-student",
			a.limiter.EndpointMiddleware("generate", a.limiter.Default(), ratelimit.ClientIP),
			h.generateStudent)
		api.POST("/assess",
			a.limiter.EndpointMiddleware("assess", a.limiter.Default(), ratelimit.ClientIP),
			h.assess)
		api.POST("/classify", h.classify)

		api.POST("/factors/categorize", h.categorize)
		api.GET("/factors/catalog", a.catalog.Middleware(a.metrics), h.catalog)

		api.GET("/history", h.listHistory)
		api.POST("/history", h.recordHistory)
		api.DELETE("/history", h.clearHistory)
		api.GET("/history/latest", h.latestHistory)

		api.GET("/statistics", h.statistics)
		api.GET("/distribution", h.populationDistribution)
		api.POST("/distribution/assessment", h.assessmentDistribution)
		api.POST("/reset", h.reset)
	}

	if a.local != nil {
		registerStudentDataRoutes(r.Group("/data"), a.local, a.security)
	}

	dist, err := frontend.DistFS()
	if err != nil {
		return nil, err
	}
	spa, err := frontend.NewSPAHandler(dist)
	if err != nil {
		return nil, err
	}
	r.NoRoute(a.profiles.Middleware(), spa)
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusMethodNotAllowed)
	})

	return r, nil
}

func (a *app) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", monitoring.RequestIDHeader},
		ExposeHeaders: []string{monitoring.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(a.cfg.CORS.Origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = a.cfg.CORS.Origins
	cfg.AllowCredentials = true
	return cfg
}
