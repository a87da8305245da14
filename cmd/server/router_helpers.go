package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"tipsats.backend/internal/interfaces/http/middleware"
	"tipsats.backend/pkg/metrics"
)

const serviceName = "tipsats-backend"

func applyCORSMiddleware(r *gin.Engine, origins []string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			middleware.AuthorizationHeader,
			middleware.SessionIDHeader,
			middleware.IdempotencyHeader,
			middleware.RequestIDHeader,
		},
		ExposeHeaders:    []string{middleware.RequestIDHeader, middleware.IdempotencyHitHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func registerHealthRoute(r *gin.Engine, version string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": version,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
