package prices

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubLookup struct {
	prices map[string]float64
	calls  int
}

func (s *stubLookup) Lookup(_ context.Context, symbol string) (float64, error) {
	s.calls++
	price, ok := s.prices[symbol]
	if !ok {
		return 0, errors.New("unknown symbol")
	}
	return price, nil
}

type mapCache map[string]float64

func (m mapCache) Get(_ context.Context, key string) (float64, bool) {
	value, ok := m[key]
	return value, ok
}

func (m mapCache) Set(_ context.Context, key string, price float64) {
	m[key] = price
}

// TestQuotesMarshalJSON проверяет сохранение порядка символов в JSON.
func TestQuotesMarshalJSON(t *testing.T) {
	payload, err := json.Marshal(Snapshot{
		Stocks: Quotes{{Symbol: "^NSEI", Price: 22000.5}, {Symbol: "^BSESN", Price: 0}},
		Crypto: Quotes{},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := `{"stocks":{"^NSEI":22000.5,"^BSESN":0},"crypto":{}}`
	if string(payload) != want {
		t.Fatalf("expected %s, got %s", want, payload)
	}
}

// TestProviderSentinel проверяет подстановку нуля при сбое источника.
func TestProviderSentinel(t *testing.T) {
	stocks := &stubLookup{prices: map[string]float64{"SPY": 512.3456}}
	provider := NewProvider(Options{
		Stocks:       stocks,
		StockSymbols: []string{"SPY", "MISSING"},
		CryptoIDs:    []string{"bitcoin"},
	})

	snapshot := provider.Snapshot(context.Background())

	if price, _ := snapshot.Stocks.Get("SPY"); price != 512.35 {
		t.Fatalf("expected rounded price 512.35, got %v", price)
	}
	if price, ok := snapshot.Stocks.Get("MISSING"); !ok || price != 0 {
		t.Fatalf("expected sentinel for missing symbol, got %v (ok=%v)", price, ok)
	}
	if price, ok := snapshot.Crypto.Get("bitcoin"); !ok || price != 0 {
		t.Fatalf("expected sentinel without crypto source, got %v (ok=%v)", price, ok)
	}
	if snapshot.Stocks[0].Symbol != "SPY" || snapshot.Stocks[1].Symbol != "MISSING" {
		t.Fatalf("expected configured order, got %v", snapshot.Stocks)
	}
}

// TestProviderCache проверяет, что кэшируются только доступные цены.
func TestProviderCache(t *testing.T) {
	crypto := &stubLookup{prices: map[string]float64{"bitcoin": 65000}}
	cache := mapCache{}
	provider := NewProvider(Options{Crypto: crypto, Cache: cache})

	ctx := context.Background()
	if price := provider.CryptoPrice(ctx, "bitcoin"); price != 65000 {
		t.Fatalf("expected 65000, got %v", price)
	}
	if price := provider.CryptoPrice(ctx, "bitcoin"); price != 65000 {
		t.Fatalf("expected cached 65000, got %v", price)
	}
	if crypto.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", crypto.calls)
	}

	provider.CryptoPrice(ctx, "dogecoin")
	provider.CryptoPrice(ctx, "dogecoin")
	if crypto.calls != 3 {
		t.Fatalf("expected failed lookups not to be cached, got %d calls", crypto.calls)
	}
	if _, ok := cache["crypto:dogecoin"]; ok {
		t.Fatal("expected sentinel not to be cached")
	}
}

// TestMemoryCache проверяет кэш в памяти процесса.
func TestMemoryCache(t *testing.T) {
	cache, err := NewMemoryCache(time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	if _, ok := cache.Get(ctx, "stock:SPY"); ok {
		t.Fatal("expected empty cache")
	}

	cache.Set(ctx, "stock:SPY", 512.35)
	if price, ok := cache.Get(ctx, "stock:SPY"); !ok || price != 512.35 {
		t.Fatalf("expected cached price, got %v (ok=%v)", price, ok)
	}
}

// TestYahooLookup проверяет разбор ответа chart API.
func TestYahooLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/^NSEI" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("range") != "1d" {
			t.Errorf("expected range=1d, got %s", r.URL.Query().Get("range"))
		}
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":22010.1},"indicators":{"quote":[{"close":[21990.4,null]}]}}],"error":null}}`))
	}))
	defer server.Close()

	client := NewYahooClient(server.URL, time.Second)
	price, err := client.Lookup(context.Background(), "^NSEI")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if price != 21990.4 {
		t.Fatalf("expected last non-null close, got %v", price)
	}

	if _, err := client.Lookup(context.Background(), "UNKNOWN"); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}

// TestYahooLookupMetaFallback проверяет цену из meta при отсутствии закрытий.
func TestYahooLookupMetaFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":510.5},"indicators":{"quote":[]}}]}}`))
	}))
	defer server.Close()

	price, err := NewYahooClient(server.URL, time.Second).Lookup(context.Background(), "SPY")
	if err != nil || price != 510.5 {
		t.Fatalf("expected 510.5, got %v (err=%v)", price, err)
	}
}

// TestCoinGeckoLookup проверяет разбор ответа simple/price.
func TestCoinGeckoLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("vs_currencies") != "usd" {
			t.Errorf("expected usd, got %s", r.URL.Query().Get("vs_currencies"))
		}
		if r.URL.Query().Get("ids") == "bitcoin" {
			_, _ = w.Write([]byte(`{"bitcoin":{"usd":64321.12}}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "USD", time.Second)
	price, err := client.Lookup(context.Background(), "bitcoin")
	if err != nil || price != 64321.12 {
		t.Fatalf("expected 64321.12, got %v (err=%v)", price, err)
	}

	if _, err := client.Lookup(context.Background(), "unknown-coin"); err == nil {
		t.Fatal("expected error for missing coin")
	}
}

// TestCoinGeckoUpstreamFailure проверяет, что сбой источника дает ноль через Provider.
func TestCoinGeckoUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewProvider(Options{Crypto: NewCoinGeckoClient(server.URL, "usd", time.Second)})
	if price := provider.CryptoPrice(context.Background(), "bitcoin"); price != 0 {
		t.Fatalf("expected sentinel, got %v", price)
	}
}
