package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status     string `json:"status"`
	AIProvider string `json:"ai_provider,omitempty"`
}

// Health возвращает статус сервиса и настроенного провайдера модели.
func Health(aiProvider string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{Status: "ok", AIProvider: aiProvider})
	}
}
