package oanda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultInstrument and friends are the fallback values when the caller
	// passes nothing; the broker validates everything beyond that.
	DefaultInstrument  = "EUR_USD"
	DefaultGranularity = "H1"
	DefaultCandleCount = 200
	defaultPriceSpec   = "M"
)

// QueryDefaults fills unset candle/pricing query fields. Zero values fall
// back to the package defaults, so an empty QueryDefaults is safe.
type QueryDefaults struct {
	Instrument  string
	Granularity string
	CandleCount int
}

func (d QueryDefaults) withFallbacks() QueryDefaults {
	if strings.TrimSpace(d.Instrument) == "" {
		d.Instrument = DefaultInstrument
	}
	if strings.TrimSpace(d.Granularity) == "" {
		d.Granularity = DefaultGranularity
	}
	if d.CandleCount <= 0 {
		d.CandleCount = DefaultCandleCount
	}
	return d
}

// CandleQuery is passed through to /v3/instruments/{i}/candles with
// defaulting only; the broker is the source of truth for validity.
type CandleQuery struct {
	Instrument  string
	Granularity string
	Count       int
	Price       string
}

func (q *CandleQuery) applyDefaults(d QueryDefaults) {
	if strings.TrimSpace(q.Instrument) == "" {
		q.Instrument = d.Instrument
	}
	if strings.TrimSpace(q.Granularity) == "" {
		q.Granularity = d.Granularity
	}
	if q.Count <= 0 {
		q.Count = d.CandleCount
	}
	if strings.TrimSpace(q.Price) == "" {
		q.Price = defaultPriceSpec
	}
}

// CandlesResponse is the broker candle payload, passed through verbatim.
type CandlesResponse struct {
	Instrument  string            `json:"instrument"`
	Granularity string            `json:"granularity"`
	Candles     []json.RawMessage `json:"candles"`
}

// Candles fetches instrument candles.
func (c *Client) Candles(ctx context.Context, query CandleQuery) (*CandlesResponse, error) {
	query.applyDefaults(c.defaults)
	q := url.Values{}
	q.Set("granularity", query.Granularity)
	q.Set("count", strconv.Itoa(query.Count))
	q.Set("price", query.Price)
	path := "/v3/instruments/" + url.PathEscape(query.Instrument) + "/candles?" + q.Encode()
	var resp CandlesResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PricingResponse is the broker pricing payload, passed through verbatim.
type PricingResponse struct {
	Prices []json.RawMessage `json:"prices"`
	Time   string            `json:"time"`
}

// Pricing fetches current pricing for one or more instruments.
func (c *Client) Pricing(ctx context.Context, instruments []string) (*PricingResponse, error) {
	cleaned := make([]string, 0, len(instruments))
	for _, inst := range instruments {
		inst = strings.TrimSpace(inst)
		if inst != "" {
			cleaned = append(cleaned, inst)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{c.defaults.Instrument}
	}
	q := url.Values{}
	q.Set("instruments", strings.Join(cleaned, ","))
	path := c.accountPath("/pricing") + "?" + q.Encode()
	var resp PricingResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
