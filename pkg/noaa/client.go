package noaa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/spencer-p/tidedash/pkg/cache"
	"github.com/spencer-p/tidedash/pkg/metrics"
)

// ErrUnavailable wraps every reason a pull produced no data.
var ErrUnavailable = errors.New("noaa: data unavailable")

var (
	errStatus       = errors.New("non-success status")
	errEmptyPayload = errors.New("empty payload")
	errMissingKeys  = errors.New("payload has neither data nor predictions")
)

// payload is the envelope of a datagetter response. Exactly one of Data and
// Predictions is expected.
type payload struct {
	Data        *[]map[string]string `json:"data"`
	Predictions *[]map[string]string `json:"predictions"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ClientOptions configures a Client. Zero values get sensible defaults.
type ClientOptions struct {
	BaseURL  string
	Station  Station
	Location *time.Location
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client pulls tables from the CO-OPS API.
type Client struct {
	baseURL string
	station Station
	loc     *time.Location
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	tables  *cache.Timed[*Table]
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = NOAA_URL
	}
	if opts.Station == 0 {
		opts.Station = SantaMonica
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL: opts.BaseURL,
		station: opts.Station,
		loc:     opts.Location,
		http:    &http.Client{Timeout: opts.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "noaa",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
		}),
		tables: cache.NewTimed[*Table](opts.CacheTTL),
	}
}

// Location is the station's time zone.
func (c *Client) Location() *time.Location { return c.loc }

// Pull fetches one product over the query window. On any failure the error
// wraps ErrUnavailable and has already been logged.
func (c *Client) Pull(ctx context.Context, q Query) (*Table, error) {
	if q.Station == 0 {
		q.Station = c.station
	}
	tbl, err := c.pull(ctx, q)
	if err != nil {
		log.Printf("gateway: %s unavailable: %v", q.String(), err)
		metrics.ObservePull(string(q.Product), "unavailable")
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, q.Product, err)
	}
	metrics.ObservePull(string(q.Product), "ok")
	return tbl.Trim(q.Begin, q.End), nil
}

func (c *Client) pull(ctx context.Context, q Query) (*Table, error) {
	addr, err := q.URL(c.baseURL)
	if err != nil {
		return nil, err
	}
	key := addr.String()

	if tbl, ok := c.tables.Get(key); ok {
		return tbl, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T from circuit breaker", result)
	}

	tbl, err := parsePayload(body, q.Product, c.loc)
	if err != nil {
		return nil, err
	}
	c.tables.Set(key, tbl)
	return tbl, nil
}

func (c *Client) fetch(ctx context.Context, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", errStatus, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// parsePayload turns a response body into a table. Predictions queries read
// the "predictions" key; every other product reads "data".
func parsePayload(body []byte, product Product, loc *time.Location) (*Table, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyPayload
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("bad payload: %w", err)
	}
	if p.Error != nil {
		return nil, fmt.Errorf("error payload: %s", p.Error.Message)
	}

	var entries *[]map[string]string
	switch {
	case product == TidePredictions && p.Predictions != nil:
		entries = p.Predictions
	case p.Data != nil:
		entries = p.Data
	case p.Predictions != nil:
		entries = p.Predictions
	default:
		return nil, errMissingKeys
	}
	if len(*entries) == 0 {
		return nil, errEmptyPayload
	}
	return newTable(*entries, loc)
}
