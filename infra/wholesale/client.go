// Package wholesale fetches clearing prices from a wholesale market API and
// serves them to the balancing market as a price oracle.
package wholesale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/kilianp07/balancemkt/core/logger"
	"github.com/kilianp07/balancemkt/core/monitoring"
)

// Config defines the wholesale API endpoint and its OAuth2 client
// credentials. An empty TokenURL disables authentication.
type Config struct {
	BaseURL        string   `json:"base_url"`
	TokenURL       string   `json:"token_url"`
	ClientID       string   `json:"client_id"`
	ClientSecret   string   `json:"client_secret"`
	Scopes         []string `json:"scopes"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	// Retain is the number of timeslots kept in the price cache.
	Retain int `json:"retain"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 5
	}
	if c.Retain == 0 {
		c.Retain = 24
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if c.TokenURL != "" && (c.ClientID == "" || c.ClientSecret == "") {
		return errors.New("client_id and client_secret are required with token_url")
	}
	if c.TimeoutSeconds < 0 || c.Retain < 0 {
		return errors.New("timeout_seconds and retain must not be negative")
	}
	return nil
}

// Quote is the wholesale outcome of one timeslot. Prices are per MWh.
type Quote struct {
	Timeslot       int       `json:"timeslot"`
	ClearingPrices []float64 `json:"clearing_prices"`
	SpotPrice      *float64  `json:"spot_price,omitempty"`
}

// Oracle caches quotes per timeslot. It implements balancing.PriceOracle and
// scheduler.Task.
type Oracle struct {
	base   string
	client *http.Client
	retain int
	log    logger.Logger

	mu     sync.RWMutex
	quotes map[int]Quote
}

// NewOracle builds the HTTP client. When a token URL is configured every
// request carries a client-credentials bearer token.
func NewOracle(cfg Config, log logger.Logger) (*Oracle, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	client := &http.Client{Timeout: timeout}
	if cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		client = cc.Client(context.Background())
		client.Timeout = timeout
	}
	return &Oracle{
		base:   strings.TrimSuffix(cfg.BaseURL, "/"),
		client: client,
		retain: cfg.Retain,
		log:    logger.OrNop(log),
		quotes: make(map[int]Quote),
	}, nil
}

// Fetch retrieves the quote of a timeslot without caching it.
func (o *Oracle) Fetch(ctx context.Context, timeslot int) (Quote, error) {
	u := o.base + "/clearing?timeslot=" + strconv.Itoa(timeslot)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var q Quote
	if err := json.Unmarshal(body, &q); err != nil {
		return Quote{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if q.Timeslot != timeslot {
		return Quote{}, fmt.Errorf("quote for timeslot %d, asked %d", q.Timeslot, timeslot)
	}
	return q, nil
}

// RunTimeslot refreshes the cache before the timeslot is settled. A failed
// fetch leaves the market on its default spot price.
func (o *Oracle) RunTimeslot(ctx context.Context, timeslot int) error {
	q, err := o.Fetch(ctx, timeslot)
	if err != nil {
		o.log.Warnf("wholesale quote for timeslot %d unavailable: %v", timeslot, err)
		monitoring.CaptureException(err, map[string]string{"module": "wholesale", "timeslot": strconv.Itoa(timeslot)})
		return nil
	}
	o.Store(q)
	return nil
}

// Store caches a quote and drops quotes older than the retention window.
func (o *Oracle) Store(q Quote) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quotes[q.Timeslot] = q
	for ts := range o.quotes {
		if ts <= q.Timeslot-o.retain {
			delete(o.quotes, ts)
		}
	}
}

// ClearingPrices returns the cached clearing prices of a timeslot.
func (o *Oracle) ClearingPrices(timeslot int) []float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	q, ok := o.quotes[timeslot]
	if !ok {
		return nil
	}
	return append([]float64(nil), q.ClearingPrices...)
}

// SpotClearingPrice returns the cached spot price of a timeslot.
func (o *Oracle) SpotClearingPrice(timeslot int) (float64, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	q, ok := o.quotes[timeslot]
	if !ok || q.SpotPrice == nil {
		return 0, false
	}
	return *q.SpotPrice, true
}
