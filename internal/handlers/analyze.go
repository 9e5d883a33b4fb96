package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/finsight/backend/internal/advisor"
	"example.com/finsight/backend/internal/budget"
)

// Analyzer выполняет полный анализ бюджета.
type Analyzer interface {
	Analyze(ctx context.Context, input advisor.Input) (advisor.Result, error)
}

type AnalyzeHandler struct {
	Analyzer Analyzer
}

// NewAnalyzeHandler создает обработчик анализа бюджета.
func NewAnalyzeHandler(analyzer Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{Analyzer: analyzer}
}

type AnalyzeRequest struct {
	Income   *float64         `json:"income" validate:"required,gte=0"`
	Expenses []ExpenseRequest `json:"expenses" validate:"required,dive"`
}

type ExpenseRequest struct {
	Name     string   `json:"name"`
	Amount   *float64 `json:"amount" validate:"required,gte=0"`
	Category string   `json:"category"`
}

// Analyze принимает доход и расходы и возвращает сводку с советами.
func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.Analyzer.Analyze(c.Request().Context(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, advisor.ErrInvalidInput):
			return badRequest(c, err.Error())
		case errors.Is(err, advisor.ErrGeneration):
			return badGateway(c, "advice generation failed")
		default:
			slog.ErrorContext(c.Request().Context(), "analysis failed", slog.String("error", err.Error()))
			return serverError(c)
		}
	}

	return c.JSON(http.StatusOK, result)
}

func (r AnalyzeRequest) toInput() advisor.Input {
	input := advisor.Input{Expenses: make([]budget.ExpenseItem, 0, len(r.Expenses))}
	if r.Income != nil {
		input.Income = *r.Income
	}

	for _, expense := range r.Expenses {
		item := budget.ExpenseItem{Name: expense.Name, Category: expense.Category}
		if expense.Amount != nil {
			item.Amount = *expense.Amount
		}
		input.Expenses = append(input.Expenses, item)
	}

	return input
}
