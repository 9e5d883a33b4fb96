package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"example.com/finsight/backend/internal/ai"
	"example.com/finsight/backend/internal/budget"
	"example.com/finsight/backend/internal/prices"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrGeneration   = errors.New("advice generation failed")
)

type Input struct {
	Income   float64              `json:"income"`
	Expenses []budget.ExpenseItem `json:"expenses"`
}

type Result struct {
	Categories budget.CategoryTotals `json:"categories"`
	Summary    budget.Summary        `json:"summary"`
	Prices     prices.Snapshot       `json:"prices"`
	Advice     string                `json:"advice"`
}

// PriceSource возвращает снимок котировок; сбои источника уже заменены нулями.
type PriceSource interface {
	Snapshot(ctx context.Context) prices.Snapshot
}

type Generator interface {
	GenerateAdvice(ctx context.Context, input ai.PromptInput) (ai.AdviceResult, error)
}

type Options struct {
	Prices    PriceSource
	Generator Generator
	Recorder  Recorder
	Logger    *slog.Logger
	Provider  string
	Model     string
}

type Advisor struct {
	prices    PriceSource
	generator Generator
	recorder  Recorder
	logger    *slog.Logger
	provider  string
	model     string
}

// New создает оркестратор анализа бюджета.
func New(opts Options) *Advisor {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = NopRecorder{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Advisor{
		prices:    opts.Prices,
		generator: opts.Generator,
		recorder:  recorder,
		logger:    logger,
		provider:  opts.Provider,
		model:     opts.Model,
	}
}

// Validate проверяет входные данные до запуска конвейера.
func Validate(input Input) error {
	if !finite(input.Income) || input.Income < 0 {
		return fmt.Errorf("%w: income must be a non-negative number", ErrInvalidInput)
	}

	for i, expense := range input.Expenses {
		if !finite(expense.Amount) || expense.Amount < 0 {
			return fmt.Errorf("%w: expenses[%d].amount must be a non-negative number", ErrInvalidInput, i)
		}
	}

	return nil
}

// Budget выполняет детерминированную часть анализа без внешних сервисов.
func Budget(input Input) (budget.CategoryTotals, budget.Summary) {
	totals := budget.Aggregate(input.Expenses)
	return totals, budget.Recommend(input.Income, totals)
}

// Analyze проводит полный анализ: категории, сводка, котировки, советы модели.
// Сбой транспорта модели возвращается как ErrGeneration; неразборчивый ответ - нет.
func (a *Advisor) Analyze(ctx context.Context, input Input) (Result, error) {
	if err := Validate(input); err != nil {
		return Result{}, err
	}

	started := time.Now()
	runID := uuid.New()

	totals, summary := Budget(input)

	var snapshot prices.Snapshot
	if a.prices != nil {
		snapshot = a.prices.Snapshot(ctx)
	}

	promptInput := ai.PromptInput{Categories: totals, Summary: summary, Prices: snapshot}
	advice, err := a.generator.GenerateAdvice(ctx, promptInput)

	run := Run{
		ID:       runID,
		Provider: a.provider,
		Model:    a.model,
		Input:    input,
		Prompt:   advice.Prompt,
		Raw:      advice.Raw,
		Parsed:   advice.Parsed,
		Duration: time.Since(started),
	}

	if err != nil {
		run.Err = err
		a.recorder.Record(ctx, run)
		a.logger.ErrorContext(ctx, "advice generation failed",
			slog.String("run_id", runID.String()),
			slog.String("error", err.Error()),
		)
		return Result{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	result := Result{
		Categories: totals,
		Summary:    summary,
		Prices:     snapshot,
		Advice:     advice.Text,
	}
	run.Result = &result
	a.recorder.Record(ctx, run)

	a.logger.InfoContext(ctx, "analysis completed",
		slog.String("run_id", runID.String()),
		slog.Int("expenses", len(input.Expenses)),
		slog.Bool("advice_parsed", advice.Parsed),
		slog.Duration("duration", run.Duration),
	)

	return result, nil
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
