package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"example.com/finsight/backend/internal/advisor"
)

type stubAnalyzer struct {
	input advisor.Input
}

func (s *stubAnalyzer) Analyze(_ context.Context, input advisor.Input) (advisor.Result, error) {
	s.input = input
	totals, summary := advisor.Budget(input)
	return advisor.Result{Categories: totals, Summary: summary, Advice: "## Advice"}, nil
}

func run(t *testing.T, factory AnalyzerFactory, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCmd(factory)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// TestCategorizeCommand проверяет вывод категорий по меткам.
func TestCategorizeCommand(t *testing.T) {
	out, err := run(t, nil, "", "categorize", "Rent", "Netflix", "Random gift")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := "Rent\tHousing\nNetflix\tEntertainment\nRandom gift\tMisc\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

// TestBudgetCommand проверяет офлайн-расчет сводки из файла.
func TestBudgetCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, []byte(`{"income":5000,"expenses":[{"name":"Rent","amount":1500},{"name":"Netflix","amount":15}]}`), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, err := run(t, nil, "", "budget", "--file", path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var decoded budgetOutput
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if decoded.Summary.TotalSpend != 1515 || decoded.Summary.SurplusOrDeficit != 3485 {
		t.Fatalf("unexpected summary %+v", decoded.Summary)
	}
}

// TestBudgetCommandRejectsNegative проверяет валидацию входного файла.
func TestBudgetCommandRejectsNegative(t *testing.T) {
	_, err := run(t, nil, `{"income":-5,"expenses":[]}`, "budget", "--file", "-")
	if !errors.Is(err, advisor.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// TestAnalyzeCommand проверяет запуск анализа через фабрику.
func TestAnalyzeCommand(t *testing.T) {
	analyzer := &stubAnalyzer{}
	closed := false
	factory := func(context.Context) (Analyzer, func(), error) {
		return analyzer, func() { closed = true }, nil
	}

	out, err := run(t, factory, `{"income":100,"expenses":[{"name":"Uber","amount":20}]}`, "analyze", "-f", "-")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !closed {
		t.Fatal("expected resources to be released")
	}
	if analyzer.input.Income != 100 || len(analyzer.input.Expenses) != 1 {
		t.Fatalf("unexpected input %+v", analyzer.input)
	}
	if !strings.Contains(out, `"Transport": 20`) || !strings.Contains(out, `"advice": "## Advice"`) {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

// TestAnalyzeCommandFactoryError проверяет ошибку сборки анализатора.
func TestAnalyzeCommandFactoryError(t *testing.T) {
	factoryErr := errors.New("no api key")
	factory := func(context.Context) (Analyzer, func(), error) {
		return nil, nil, factoryErr
	}

	if _, err := run(t, factory, `{"income":1,"expenses":[]}`, "analyze", "-f", "-"); !errors.Is(err, factoryErr) {
		t.Fatalf("expected factory error, got %v", err)
	}
}

// TestRenderCommand проверяет рендер сырого ответа и запасной текст.
func TestRenderCommand(t *testing.T) {
	out, err := run(t, nil, `{"habit_plan":[{"month":1,"goals":["Save $50"]}]}`, "render", "-f", "-")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "Month 1: Save $50") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = run(t, nil, "Sorry, I cannot comply.", "render", "-f", "-")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "unable to generate a structured financial plan") {
		t.Fatalf("expected fallback, got:\n%s", out)
	}
}
