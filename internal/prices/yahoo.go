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

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient reads the latest equity/index price from the Yahoo Finance chart API.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// NewYahooClient создает клиент котировок акций и индексов.
func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lookup возвращает последнюю цену закрытия символа за день.
func (c *YahooClient) Lookup(ctx context.Context, symbol string) (float64, error) {
	query := url.Values{}
	query.Set("range", "1d")
	query.Set("interval", "1d")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), query.Encode())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", "finsight/1.0")

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
		return 0, fmt.Errorf("yahoo api error: status %d", response.StatusCode)
	}

	var parsed yahooChartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, err
	}
	if parsed.Chart.Error != nil {
		return 0, fmt.Errorf("yahoo api error: %s", parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return 0, fmt.Errorf("yahoo response has no data for %s", symbol)
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil {
				return *closes[i], nil
			}
		}
	}

	if result.Meta.RegularMarketPrice > 0 {
		return result.Meta.RegularMarketPrice, nil
	}

	return 0, fmt.Errorf("yahoo response has no price for %s", symbol)
}
