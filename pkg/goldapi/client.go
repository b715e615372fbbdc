package goldapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is the exchange-rate API base URL.
	DefaultBaseURL = "https://economia.awesomeapi.com.br"
)

// Quote is a spot price quote as reported by the feed. Bid is quoted per
// troy ounce in the pair's local currency.
type Quote struct {
	Bid        float64
	CreateDate string
}

// Config holds client construction options.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a minimal HTTP client for the exchange-rate quote API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	debug      bool
}

// NewClient constructs a new quote client with sane defaults.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		debug:      os.Getenv("ENV") == "development",
	}
}

// GetQuote fetches the latest quote for a currency pair such as "XAU-BRL".
// The API keys the payload by the pair without its dash, e.g.
// {"XAUBRL": {"bid": "400.00", "create_date": "..."}}.
func (c *Client) GetQuote(ctx context.Context, pair string) (*Quote, error) {
	url := fmt.Sprintf("%s/last/%s", c.baseURL, pair)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("url", url).
			Int("status_code", resp.StatusCode).
			RawJSON("response", respBody).
			Msg("[GOLDAPI] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}

	var payload map[string]quotePayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	key := strings.ReplaceAll(pair, "-", "")
	q, ok := payload[key]
	if !ok {
		return nil, fmt.Errorf("quote for %s missing in response", pair)
	}

	bid, err := q.Bid.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid bid %q: %w", q.Bid, err)
	}

	return &Quote{Bid: bid, CreateDate: q.CreateDate}, nil
}

// quotePayload is the nested quote object. The API reports numeric values
// as strings; flexNumber tolerates both.
type quotePayload struct {
	Bid        flexNumber `json:"bid"`
	CreateDate string     `json:"create_date"`
}

// flexNumber decodes a JSON number that may arrive as a string or a number.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	*n = flexNumber(s)
	return nil
}

func (n flexNumber) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}
