package server

import (
	"github.com/labstack/echo/v4"

	"example.com/finsight/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	health echo.HandlerFunc,
	analyzeHandler *handlers.AnalyzeHandler,
	analyzeRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", health)

	// Старый путь фронтенда без версии.
	e.POST("/analyze", analyzeHandler.Analyze, analyzeRateLimiter)

	api := e.Group("/api/v1")
	api.POST("/analyze", analyzeHandler.Analyze, analyzeRateLimiter)
}
