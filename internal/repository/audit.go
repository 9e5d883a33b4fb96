package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const auditSchemaSQL = `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id UUID PRIMARY KEY,
		provider VARCHAR(50) NOT NULL,
		model VARCHAR(100) NOT NULL,
		prompt TEXT,
		input_payload JSONB,
		result_payload JSONB,
		raw_response TEXT,
		advice_parsed BOOLEAN NOT NULL DEFAULT FALSE,
		success BOOLEAN NOT NULL,
		error_message TEXT,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs(created_at);
`

// Execer - общий метод *pgxpool.Pool и pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type AuditRepository struct {
	db Execer
}

type AnalysisLog struct {
	ID            uuid.UUID
	Provider      string
	Model         string
	Prompt        string
	InputPayload  []byte
	ResultPayload []byte
	RawResponse   string
	AdviceParsed  bool
	Success       bool
	ErrorMessage  *string
	DurationMS    int64
}

// NewAuditRepository создает репозиторий журнала анализов.
func NewAuditRepository(db Execer) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema создает таблицу журнала, если ее еще нет.
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, auditSchemaSQL); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// LogAnalysis сохраняет запись о прогоне анализа.
func (r *AuditRepository) LogAnalysis(ctx context.Context, log AnalysisLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO analysis_runs
		 (id, provider, model, prompt, input_payload, result_payload, raw_response, advice_parsed, success, error_message, duration_ms)
		 VALUES ($1, $2, $3, $4, NULLIF($5, '')::jsonb, NULLIF($6, '')::jsonb, $7, $8, $9, $10, $11)`,
		log.ID,
		log.Provider,
		log.Model,
		log.Prompt,
		string(log.InputPayload),
		string(log.ResultPayload),
		log.RawResponse,
		log.AdviceParsed,
		log.Success,
		log.ErrorMessage,
		log.DurationMS,
	)
	return err
}
