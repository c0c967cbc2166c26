// Package cbr fetches the Central Bank of Russia daily exchange-rate feed.
// The feed publishes RUB per Nominal units of each currency; the client
// normalizes that into per-unit rates so callers never see nominals.
package cbr

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	httpClient "github.com/dealdesk/dealdesk-api/internal/client/http"
)

const (
	defaultBaseURL = "https://www.cbr.ru"
	dailyFeedPath  = "/scripts/XML_daily.asp"
	defaultTimeout = 10 * time.Second
)

// Client manages communication with the CBR daily rate feed.
type Client struct {
	httpClient *httpClient.HTTPClient
}

// NewClient creates a new CBR feed client. An empty baseURL uses the
// published feed endpoint; tests point it at a local server.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient.NewHTTPClient(
			httpClient.WithBaseURL(baseURL),
			httpClient.WithTimeout(defaultTimeout),
			httpClient.WithDefaultHeader("Accept", "application/xml"),
		),
	}
}

// valCurs is the feed's document root.
type valCurs struct {
	Date    string   `xml:"Date,attr"`
	Valutes []valute `xml:"Valute"`
}

type valute struct {
	CharCode string `xml:"CharCode"`
	Nominal  int64  `xml:"Nominal"`
	// Value and VunitRate use a comma decimal separator.
	Value     string `xml:"Value"`
	VunitRate string `xml:"VunitRate"`
}

// DailyRate is one currency's normalized per-unit rate in RUB.
type DailyRate struct {
	CharCode string
	Rate     decimal.Decimal
}

// DailyRates is the parsed feed snapshot.
type DailyRates struct {
	Date  string
	Rates map[string]decimal.Decimal
}

// GetDailyRates fetches and normalizes the daily feed. Rates are RUB per one
// unit of the keyed currency.
func (c *Client) GetDailyRates(ctx context.Context) (*DailyRates, error) {
	resp, err := c.httpClient.Get(ctx, dailyFeedPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch daily rate feed")
	}

	var doc valCurs
	if err := c.httpClient.ProcessXMLResponse(resp, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode daily rate feed")
	}

	rates := make(map[string]decimal.Decimal, len(doc.Valutes))
	for _, v := range doc.Valutes {
		rate, err := parseValute(v)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse feed entry %s", v.CharCode)
		}
		rates[v.CharCode] = rate
	}

	return &DailyRates{Date: doc.Date, Rates: rates}, nil
}

// parseValute normalizes one feed entry to a per-unit rate. VunitRate is
// preferred when present; otherwise Value is divided by the Nominal.
func parseValute(v valute) (decimal.Decimal, error) {
	if raw := strings.TrimSpace(v.VunitRate); raw != "" {
		return parseFeedDecimal(raw)
	}
	value, err := parseFeedDecimal(v.Value)
	if err != nil {
		return decimal.Zero, err
	}
	nominal := v.Nominal
	if nominal <= 0 {
		nominal = 1
	}
	return value.Div(decimal.NewFromInt(nominal)), nil
}

func parseFeedDecimal(raw string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "malformed decimal %q", raw)
	}
	return value, nil
}
