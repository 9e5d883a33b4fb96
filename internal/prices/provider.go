package prices

import (
	"context"
	"log/slog"
	"math"
)

var (
	DefaultStocks = []string{"^NSEI", "^BSESN"}
	DefaultCrypto = []string{"bitcoin", "ethereum"}
)

// Lookup получает цену одного символа у внешнего источника.
type Lookup interface {
	Lookup(ctx context.Context, symbol string) (float64, error)
}

type Options struct {
	Stocks       Lookup
	Crypto       Lookup
	Cache        Cache
	StockSymbols []string
	CryptoIDs    []string
	Logger       *slog.Logger
}

// Provider собирает снимок котировок. Любой сбой источника превращается в цену 0.
type Provider struct {
	stocks       Lookup
	crypto       Lookup
	cache        Cache
	stockSymbols []string
	cryptoIDs    []string
	logger       *slog.Logger
}

// NewProvider создает поставщика котировок.
func NewProvider(opts Options) *Provider {
	cache := opts.Cache
	if cache == nil {
		cache = NopCache{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		stocks:       opts.Stocks,
		crypto:       opts.Crypto,
		cache:        cache,
		stockSymbols: opts.StockSymbols,
		cryptoIDs:    opts.CryptoIDs,
		logger:       logger,
	}
}

// StockPrice возвращает цену акции или индекса, 0 - цена недоступна.
func (p *Provider) StockPrice(ctx context.Context, symbol string) float64 {
	return p.price(ctx, "stock", p.stocks, symbol)
}

// CryptoPrice возвращает цену криптовалюты, 0 - цена недоступна.
func (p *Provider) CryptoPrice(ctx context.Context, coinID string) float64 {
	return p.price(ctx, "crypto", p.crypto, coinID)
}

// Snapshot запрашивает котировки всех настроенных символов по очереди.
func (p *Provider) Snapshot(ctx context.Context) Snapshot {
	snapshot := Snapshot{
		Stocks: make(Quotes, 0, len(p.stockSymbols)),
		Crypto: make(Quotes, 0, len(p.cryptoIDs)),
	}

	for _, symbol := range p.stockSymbols {
		snapshot.Stocks = append(snapshot.Stocks, Quote{Symbol: symbol, Price: p.StockPrice(ctx, symbol)})
	}
	for _, coinID := range p.cryptoIDs {
		snapshot.Crypto = append(snapshot.Crypto, Quote{Symbol: coinID, Price: p.CryptoPrice(ctx, coinID)})
	}

	return snapshot
}

func (p *Provider) price(ctx context.Context, kind string, source Lookup, symbol string) float64 {
	if source == nil {
		return 0
	}

	key := kind + ":" + symbol
	if cached, ok := p.cache.Get(ctx, key); ok {
		return cached
	}

	value, err := source.Lookup(ctx, symbol)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		attrs := []any{slog.String("kind", kind), slog.String("symbol", symbol)}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		p.logger.WarnContext(ctx, "price lookup failed", attrs...)
		return 0
	}

	rounded := math.RoundToEven(value*100) / 100
	if rounded > 0 {
		p.cache.Set(ctx, key, rounded)
	}
	return rounded
}
