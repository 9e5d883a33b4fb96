package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"example.com/finsight/backend/internal/advisor"
	"example.com/finsight/backend/internal/ai"
	"example.com/finsight/backend/internal/budget"
)

// NewCategorizeCmd печатает категорию для каждой метки расхода.
func NewCategorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categorize <label>...",
		Short: "Print the spending category for each expense label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, label := range args {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", label, budget.Classify(label)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type budgetOutput struct {
	Categories budget.CategoryTotals `json:"categories"`
	Summary    budget.Summary        `json:"summary"`
}

// NewBudgetCmd считает категории и сводку без внешних сервисов.
func NewBudgetCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Aggregate expenses and print the budget summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			totals, summary := advisor.Budget(input)
			return writeJSON(cmd, budgetOutput{Categories: totals, Summary: summary})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the input JSON, - for stdin")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

type AnalyzeCmd struct {
	file    string
	timeout time.Duration
	factory AnalyzerFactory
}

// NewAnalyzeCmd запускает полный анализ с настроенными провайдерами.
func NewAnalyzeCmd(factory AnalyzerFactory) *cobra.Command {
	ac := &AnalyzeCmd{factory: factory}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full analysis with prices and model advice",
		RunE:  ac.run,
	}

	cmd.Flags().StringVarP(&ac.file, "file", "f", "", "Path to the input JSON, - for stdin")
	cmd.Flags().DurationVar(&ac.timeout, "timeout", 2*time.Minute, "Overall analysis timeout")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	if ac.factory == nil {
		return errors.New("analyzer is not configured")
	}

	input, err := readInput(cmd, ac.file)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, ac.timeout)
	defer cancel()

	analyzer, closeFn, err := ac.factory(ctx)
	if err != nil {
		return fmt.Errorf("build analyzer: %w", err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	result, err := analyzer.Analyze(ctx, input)
	if err != nil {
		return err
	}

	return writeJSON(cmd, result)
}

// NewRenderCmd превращает сырой ответ модели в markdown-советы.
func NewRenderCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a raw model response as markdown advice",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readSource(cmd, file)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ai.Render(string(raw)))
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the raw response, - for stdin")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
