package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient reads spot crypto prices from the CoinGecko simple price API.
type CoinGeckoClient struct {
	baseURL    string
	vsCurrency string
	httpClient *http.Client
}

// NewCoinGeckoClient создает клиент котировок криптовалют.
func NewCoinGeckoClient(baseURL, vsCurrency string, timeout time.Duration) *CoinGeckoClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultCoinGeckoBaseURL
	}
	if strings.TrimSpace(vsCurrency) == "" {
		vsCurrency = "usd"
	}
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		vsCurrency: strings.ToLower(vsCurrency),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lookup возвращает цену монеты в валюте vsCurrency.
func (c *CoinGeckoClient) Lookup(ctx context.Context, coinID string) (float64, error) {
	query := url.Values{}
	query.Set("ids", coinID)
	query.Set("vs_currencies", c.vsCurrency)
	endpoint := c.baseURL + "/simple/price?" + query.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return 0, fmt.Errorf("coingecko api error: status %d", response.StatusCode)
	}

	var parsed map[string]map[string]float64
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, err
	}

	price, ok := parsed[coinID][c.vsCurrency]
	if !ok {
		return 0, fmt.Errorf("coingecko response has no %s price for %s", c.vsCurrency, coinID)
	}

	return price, nil
}
