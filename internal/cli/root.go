package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"example.com/finsight/backend/internal/advisor"
	"example.com/finsight/backend/internal/app"
	"example.com/finsight/backend/internal/config"
)

// Analyzer выполняет полный анализ бюджета.
type Analyzer interface {
	Analyze(ctx context.Context, input advisor.Input) (advisor.Result, error)
}

// AnalyzerFactory собирает анализатор и функцию освобождения ресурсов.
type AnalyzerFactory func(ctx context.Context) (Analyzer, func(), error)

// NewRootCmd создает корневую команду advisorctl.
func NewRootCmd(factory AnalyzerFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "advisorctl",
		Short:         "Categorize expenses and build budget advice",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		NewCategorizeCmd(),
		NewBudgetCmd(),
		NewAnalyzeCmd(factory),
		NewRenderCmd(),
	)

	return root
}

// ConfiguredAnalyzer собирает анализатор из окружения, как это делает сервер.
func ConfiguredAnalyzer(ctx context.Context) (Analyzer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return application.Advisor, application.Close, nil
}

func readSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func readInput(cmd *cobra.Command, path string) (advisor.Input, error) {
	data, err := readSource(cmd, path)
	if err != nil {
		return advisor.Input{}, err
	}

	var input advisor.Input
	if err := json.Unmarshal(data, &input); err != nil {
		return advisor.Input{}, fmt.Errorf("decode input: %w", err)
	}

	if err := advisor.Validate(input); err != nil {
		return advisor.Input{}, err
	}
	return input, nil
}

func writeJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
