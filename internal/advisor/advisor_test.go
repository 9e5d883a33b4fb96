package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"example.com/finsight/backend/internal/ai"
	"example.com/finsight/backend/internal/budget"
	"example.com/finsight/backend/internal/prices"
	"example.com/finsight/backend/internal/repository"
)

type staticPrices struct {
	snapshot prices.Snapshot
}

func (s staticPrices) Snapshot(context.Context) prices.Snapshot {
	return s.snapshot
}

type scriptedClient struct {
	content string
	err     error
	prompt  string
}

func (c *scriptedClient) Chat(_ context.Context, messages []ai.Message) (string, []byte, error) {
	c.prompt = messages[len(messages)-1].Content
	if c.err != nil {
		return "", nil, c.err
	}
	return c.content, []byte(c.content), nil
}

type memoryRecorder struct {
	runs []Run
}

func (m *memoryRecorder) Record(_ context.Context, run Run) {
	m.runs = append(m.runs, run)
}

type failingStore struct {
	calls int
	last  repository.AnalysisLog
}

func (f *failingStore) LogAnalysis(_ context.Context, log repository.AnalysisLog) error {
	f.calls++
	f.last = log
	return errors.New("database is down")
}

func newTestAdvisor(client ai.Client, recorder Recorder) *Advisor {
	return New(Options{
		Prices: staticPrices{snapshot: prices.Snapshot{
			Stocks: prices.Quotes{{Symbol: "^NSEI", Price: 22000.5}},
			Crypto: prices.Quotes{{Symbol: "bitcoin", Price: 0}},
		}},
		Generator: ai.NewService(client, nil),
		Recorder:  recorder,
		Provider:  "fake",
		Model:     "fake-model",
	})
}

func sampleInput() Input {
	return Input{
		Income: 5000,
		Expenses: []budget.ExpenseItem{
			{Name: "Rent", Amount: 1500},
			{Name: "Netflix", Amount: 15},
		},
	}
}

// TestAnalyzeEndToEnd проверяет полный прогон на типичном примере.
func TestAnalyzeEndToEnd(t *testing.T) {
	client := &scriptedClient{content: `{"advice":["Keep going"],"habit_plan":[{"month":1,"goals":["Save $50"]}],"disclaimer":"Not advice."}`}
	recorder := &memoryRecorder{}

	result, err := newTestAdvisor(client, recorder).Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(result.Categories) != 2 || result.Categories[budget.CategoryHousing] != 1500 || result.Categories[budget.CategoryEntertainment] != 15 {
		t.Fatalf("unexpected categories: %v", result.Categories)
	}
	if result.Summary.NeedsCurrent != 1500 || result.Summary.WantsCurrent != 15 || result.Summary.TotalSpend != 1515 || result.Summary.SurplusOrDeficit != 3485 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if price, ok := result.Prices.Crypto.Get("bitcoin"); !ok || price != 0 {
		t.Fatalf("expected sentinel price to be kept, got %v", price)
	}
	if !strings.Contains(result.Advice, "Month 1: Save $50") {
		t.Fatalf("unexpected advice:\n%s", result.Advice)
	}
	if !strings.Contains(client.prompt, "- ^NSEI: 22000.50") {
		t.Fatalf("expected prices in prompt:\n%s", client.prompt)
	}

	if len(recorder.runs) != 1 || !recorder.runs[0].Parsed || recorder.runs[0].Result == nil || recorder.runs[0].Err != nil {
		t.Fatalf("unexpected recorded run: %+v", recorder.runs)
	}
}

// TestAnalyzeResultJSON проверяет форму ответа.
func TestAnalyzeResultJSON(t *testing.T) {
	client := &scriptedClient{content: "{}"}

	result, err := newTestAdvisor(client, nil).Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	for _, key := range []string{"categories", "summary", "prices", "advice"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("expected key %q in %s", key, payload)
		}
	}
	if !strings.Contains(string(decoded["categories"]), `"Housing":1500`) {
		t.Fatalf("unexpected categories json: %s", decoded["categories"])
	}
	if !strings.Contains(string(decoded["prices"]), `"stocks":{"^NSEI":22000.5}`) {
		t.Fatalf("unexpected prices json: %s", decoded["prices"])
	}
}

// TestAnalyzeMalformedAdvice проверяет, что неразборчивый ответ не ломает запрос.
func TestAnalyzeMalformedAdvice(t *testing.T) {
	client := &scriptedClient{content: "Sorry, I cannot comply."}
	recorder := &memoryRecorder{}

	result, err := newTestAdvisor(client, recorder).Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Advice != ai.FallbackAdvice {
		t.Fatalf("expected fallback advice, got %q", result.Advice)
	}
	if result.Summary.TotalSpend != 1515 {
		t.Fatalf("expected summary to be filled, got %+v", result.Summary)
	}
	if len(recorder.runs) != 1 || recorder.runs[0].Parsed {
		t.Fatalf("expected unparsed run to be recorded, got %+v", recorder.runs)
	}
}

// TestAnalyzeTransportFailure проверяет проброс сбоя транспорта модели.
func TestAnalyzeTransportFailure(t *testing.T) {
	transportErr := &ai.APIError{Provider: "fake", StatusCode: 503, Message: "unavailable"}
	recorder := &memoryRecorder{}

	_, err := newTestAdvisor(&scriptedClient{err: transportErr}, recorder).Analyze(context.Background(), sampleInput())
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}

	var apiErr *ai.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 503 {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}

	if len(recorder.runs) != 1 || recorder.runs[0].Err == nil || recorder.runs[0].Result != nil {
		t.Fatalf("expected failed run to be recorded, got %+v", recorder.runs)
	}
}

// TestAnalyzeInvalidInput проверяет отказ до вызова внешних сервисов.
func TestAnalyzeInvalidInput(t *testing.T) {
	client := &scriptedClient{content: "{}"}
	advisor := newTestAdvisor(client, nil)

	inputs := []Input{
		{Income: -1},
		{Income: math.NaN()},
		{Income: 100, Expenses: []budget.ExpenseItem{{Name: "Rent", Amount: -5}}},
		{Income: 100, Expenses: []budget.ExpenseItem{{Name: "Rent", Amount: math.Inf(1)}}},
	}
	for _, input := range inputs {
		if _, err := advisor.Analyze(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", input, err)
		}
	}

	if client.prompt != "" {
		t.Fatal("expected generation not to be called")
	}
}

// TestAnalyzeZeroIncome проверяет вырожденный доход.
func TestAnalyzeZeroIncome(t *testing.T) {
	result, err := newTestAdvisor(&scriptedClient{content: "{}"}, nil).Analyze(context.Background(), Input{
		Expenses: []budget.ExpenseItem{{Name: "Groceries", Amount: 200}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Summary.SuggestedSavings != 0 || result.Summary.SuggestedNeedsCap != 0 {
		t.Fatalf("expected zero savings and caps, got %+v", result.Summary)
	}
}

// TestStoreRecorderSwallowsErrors проверяет, что ошибка аудита не всплывает.
func TestStoreRecorderSwallowsErrors(t *testing.T) {
	store := &failingStore{}
	advisor := newTestAdvisor(&scriptedClient{content: `{"advice":["ok"]}`}, NewStoreRecorder(store, nil))

	result, err := advisor.Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Advice == "" {
		t.Fatal("expected advice")
	}

	if store.calls != 1 {
		t.Fatalf("expected one audit call, got %d", store.calls)
	}
	if !store.last.Success || !store.last.AdviceParsed || store.last.Provider != "fake" {
		t.Fatalf("unexpected audit log: %+v", store.last)
	}
	if len(store.last.InputPayload) == 0 || len(store.last.ResultPayload) == 0 {
		t.Fatal("expected payloads to be serialized")
	}
}

// TestTruncate проверяет обрезку длинных текстов аудита по символам.
func TestTruncate(t *testing.T) {
	if got := truncate("привет", 3); got != "при" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected unchanged value, got %q", got)
	}
}
