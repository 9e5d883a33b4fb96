package advisor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"example.com/finsight/backend/internal/repository"
)

const maxAuditTextLength = 8000

// Run описывает один прогон анализа для аудита.
type Run struct {
	ID       uuid.UUID
	Provider string
	Model    string
	Input    Input
	Result   *Result
	Prompt   string
	Raw      []byte
	Parsed   bool
	Err      error
	Duration time.Duration
}

// Recorder сохраняет прогон. Реализации не возвращают ошибок: аудит не влияет на ответ.
type Recorder interface {
	Record(ctx context.Context, run Run)
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Run) {}

type AuditStore interface {
	LogAnalysis(ctx context.Context, log repository.AnalysisLog) error
}

// StoreRecorder пишет прогоны в хранилище аудита и проглатывает его ошибки.
type StoreRecorder struct {
	store  AuditStore
	logger *slog.Logger
}

// NewStoreRecorder создает recorder поверх хранилища аудита.
func NewStoreRecorder(store AuditStore, logger *slog.Logger) *StoreRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreRecorder{store: store, logger: logger}
}

func (r *StoreRecorder) Record(ctx context.Context, run Run) {
	log := repository.AnalysisLog{
		ID:           run.ID,
		Provider:     run.Provider,
		Model:        run.Model,
		Prompt:       truncate(run.Prompt, maxAuditTextLength),
		RawResponse:  truncate(string(run.Raw), maxAuditTextLength),
		AdviceParsed: run.Parsed,
		Success:      run.Err == nil,
		DurationMS:   run.Duration.Milliseconds(),
	}

	log.InputPayload, _ = json.Marshal(run.Input)
	if run.Result != nil {
		result := *run.Result
		result.Advice = truncate(result.Advice, maxAuditTextLength)
		log.ResultPayload, _ = json.Marshal(result)
	}
	if run.Err != nil {
		message := run.Err.Error()
		log.ErrorMessage = &message
	}

	if err := r.store.LogAnalysis(ctx, log); err != nil {
		r.logger.WarnContext(ctx, "audit log failed", slog.String("run_id", run.ID.String()), slog.String("error", err.Error()))
	}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
