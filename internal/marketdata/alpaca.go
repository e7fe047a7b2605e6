package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jmadden91/stratlab/internal/types"
)

const (
	DefaultBaseURL = "https://data.alpaca.markets"
	// pageLimit is the bars-per-page cap we request; the API limit is
	// 10000 but we keep a buffer.
	pageLimit = 5000
)

type AlpacaClient struct {
	KeyID     string
	SecretKey string
	BaseURL   string

	httpClient *http.Client
}

func NewAlpacaClient(keyID, secretKey, baseURL string) *AlpacaClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &AlpacaClient{
		KeyID:     keyID,
		SecretKey: secretKey,
		BaseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type barPayload struct {
	Time   string  `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

type barsResponse struct {
	Bars          []barPayload `json:"bars"`
	Symbol        string       `json:"symbol"`
	NextPageToken *string      `json:"next_page_token"`
}

// FetchBars pages through the bars endpoint until the range is exhausted.
// The returned slice is chronological; the API guarantees per-page order
// and we follow its pagination cursor.
func (c *AlpacaClient) FetchBars(ctx context.Context, req Request) ([]types.Bar, error) {
	slog.Info("Fetching bars", "symbol", req.Symbol, "timeframe", req.Timeframe, "from", req.From, "to", req.To)

	var allBars []types.Bar
	pageToken := ""

	for {
		page, err := c.fetchPage(ctx, req, pageToken)
		if err != nil {
			return nil, err
		}

		bars, err := toBars(page.Bars)
		if err != nil {
			return nil, err
		}
		allBars = append(allBars, bars...)

		if page.NextPageToken == nil || *page.NextPageToken == "" {
			break
		}
		pageToken = *page.NextPageToken
	}

	slog.Info("Fetched bars", "symbol", req.Symbol, "timeframe", req.Timeframe, "count", len(allBars))
	return allBars, nil
}

func (c *AlpacaClient) fetchPage(ctx context.Context, req Request, pageToken string) (*barsResponse, error) {
	endpoint := fmt.Sprintf("%s/v2/stocks/%s/bars", c.BaseURL, url.PathEscape(req.Symbol))

	params := url.Values{}
	params.Add("timeframe", string(req.Timeframe))
	params.Add("start", req.From.UTC().Format(time.RFC3339))
	params.Add("end", req.To.UTC().Format(time.RFC3339))
	params.Add("limit", fmt.Sprintf("%d", pageLimit))
	params.Add("adjustment", "raw")
	if pageToken != "" {
		params.Add("page_token", pageToken)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("APCA-API-KEY-ID", c.KeyID)
	httpReq.Header.Set("APCA-API-SECRET-KEY", c.SecretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s %s", ErrRateLimited, req.Symbol, req.Timeframe)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.Symbol)
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrTransient, resp.StatusCode, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d: %s", resp.StatusCode, string(body))
	}

	var page barsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode bars response: %w", err)
	}
	return &page, nil
}

func toBars(payloads []barPayload) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(payloads))
	for _, p := range payloads {
		ts, err := time.Parse(time.RFC3339, p.Time)
		if err != nil {
			return nil, fmt.Errorf("parse bar time %q: %w", p.Time, err)
		}
		bars = append(bars, types.Bar{
			Timestamp: ts,
			Open:      p.Open,
			High:      p.High,
			Low:       p.Low,
			Close:     p.Close,
			Volume:    p.Volume,
		})
	}
	return bars, nil
}
