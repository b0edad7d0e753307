// Package ictax queries the Swiss federal tax administration's ICTax API
// for security data by ISIN. Lookups are paced so batch runs stay polite
// with the public endpoint, and every failure mode short of a cancelled
// context collapses into extracterror.ErrLookupNotFound.
package ictax

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"fjacquet/funds-xlsx/internal/dateutils"
	"fjacquet/funds-xlsx/internal/extracterror"
	"fjacquet/funds-xlsx/internal/funds"
	"fjacquet/funds-xlsx/internal/logging"
)

// DefaultURL is the ICTax security search endpoint.
const DefaultURL = "https://www.ictax.admin.ch/lsi/api/security"

// DefaultTimeout bounds one HTTP round trip.
const DefaultTimeout = 10 * time.Second

// DefaultDelay is the minimum spacing between two requests.
const DefaultDelay = time.Second

// Client queries the ICTax API.
type Client struct {
	httpClient *http.Client
	url        string
	limiter    *rate.Limiter
	logger     logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithURL points the client at a different endpoint.
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// WithHTTPClient replaces the HTTP client, including its timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP round-trip timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithDelay sets the minimum spacing between requests. A zero or negative
// delay disables pacing.
func WithDelay(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// NewClient builds a client with the default endpoint, a 10 second HTTP
// timeout and one request per second pacing.
func NewClient(logger logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.GetLogger()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		url:        DefaultURL,
		limiter:    rate.NewLimiter(rate.Every(DefaultDelay), 1),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Year returns the tax year to query: the given year when positive,
// otherwise the latest completed year.
func Year(year int) int {
	return dateutils.TaxYear(year)
}

type lookupRequest struct {
	Max    int    `json:"max"`
	Fetch  int    `json:"fetch"`
	Offset int    `json:"offset"`
	ISIN   string `json:"isin"`
	Year   string `json:"year"`
	Lang   string `json:"lang"`
}

type lookupResponse struct {
	Security []securityEntry `json:"security"`
}

// securityEntry is one result of the security search. The API serves vn
// both as a JSON number and as a string depending on the security.
type securityEntry struct {
	ISIN         string      `json:"isin"`
	VN           json.Number `json:"vn"`
	Institution  string      `json:"institution"`
	CountryName  string      `json:"countryName"`
	CurrencyName string      `json:"currencyName"`
}

// LookupISIN queries a bare ISIN and returns the fund built from the
// response alone.
func (c *Client) LookupISIN(ctx context.Context, isin string, year int) (funds.Fund, error) {
	base, err := funds.New(isin)
	if err != nil {
		return funds.Fund{}, err
	}
	return c.Lookup(ctx, base, year)
}

// Lookup queries the fund's ISIN and merges the response into the given
// fund. When the merge conflicts, the conflict is logged and the queried
// data is returned alone. Anything that prevents a usable response
// yields extracterror.ErrLookupNotFound.
func (c *Client) Lookup(ctx context.Context, base funds.Fund, year int) (funds.Fund, error) {
	isin := base.ISIN
	c.logger.Info("Querying fund", logging.Field{Key: logging.FieldISIN, Value: isin})
	if err := c.limiter.Wait(ctx); err != nil {
		return funds.Fund{}, fmt.Errorf("waiting for request slot: %w", err)
	}

	entry, err := c.query(ctx, isin, Year(year))
	if err != nil {
		return funds.Fund{}, err
	}

	vn, err := entry.VN.Int64()
	if err != nil {
		return funds.Fund{}, c.notFound(isin, "invalid valor number in response", err)
	}
	opts := []funds.Option{funds.WithValueNumber(vn), funds.WithName(entry.Institution)}
	if entry.CountryName != "" {
		opts = append(opts, funds.WithCountry(entry.CountryName))
	}
	if entry.CurrencyName != "" {
		opts = append(opts, funds.WithCurrency(entry.CurrencyName))
	}
	queried, err := funds.New(isin, opts...)
	if err != nil {
		return funds.Fund{}, err
	}

	merged, err := base.Merge(queried)
	if err != nil {
		c.logger.WithError(err).Error("Cannot merge queried data, returning only queried data",
			logging.Field{Key: logging.FieldISIN, Value: isin})
		return queried, nil
	}
	return merged, nil
}

func (c *Client) query(ctx context.Context, isin string, year int) (securityEntry, error) {
	payload := lookupRequest{
		Max:    5,
		Fetch:  5,
		Offset: 0,
		ISIN:   isin,
		Year:   strconv.Itoa(year),
		Lang:   "it",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return securityEntry{}, c.notFound(isin, "encoding request", err)
	}
	c.logger.Debug("Querying ICTax API",
		logging.Field{Key: logging.FieldISIN, Value: isin},
		logging.Field{Key: logging.FieldYear, Value: year})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return securityEntry{}, c.notFound(isin, "building request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return securityEntry{}, c.notFound(isin, "querying ICTax API", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.WithError(closeErr).Warn("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return securityEntry{}, c.notFound(isin,
			fmt.Sprintf("response status %d", resp.StatusCode), nil)
	}

	var decoded lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return securityEntry{}, c.notFound(isin, "parsing response", err)
	}
	if len(decoded.Security) == 0 {
		return securityEntry{}, c.notFound(isin, "no security in response", nil)
	}
	if len(decoded.Security) > 1 {
		c.logger.Warn("Multiple entries, using the first one",
			logging.Field{Key: logging.FieldISIN, Value: isin},
			logging.Field{Key: logging.FieldCount, Value: len(decoded.Security)})
	}
	entry := decoded.Security[0]
	if entry.ISIN != isin {
		return securityEntry{}, c.notFound(isin,
			fmt.Sprintf("ISIN mismatch: response has %s", entry.ISIN), nil)
	}
	if entry.Institution == "" {
		return securityEntry{}, c.notFound(isin, "no institution in response", nil)
	}
	return entry, nil
}

func (c *Client) notFound(isin, reason string, err error) error {
	logger := c.logger
	if err != nil {
		logger = logger.WithError(err)
	}
	logger.Error("Lookup failed",
		logging.Field{Key: logging.FieldISIN, Value: isin},
		logging.Field{Key: "reason", Value: reason})
	return fmt.Errorf("isin %s: %s: %w", isin, reason, extracterror.ErrLookupNotFound)
}

// LookupAll looks up every fund in order, paced by the client's limiter.
// Funds the API does not know are dropped from the result; a cancelled
// context stops the run and returns what was gathered with the error.
func (c *Client) LookupAll(ctx context.Context, fs []funds.Fund, year int) ([]funds.Fund, error) {
	var result []funds.Fund
	for _, f := range fs {
		fund, err := c.Lookup(ctx, f, year)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			continue
		}
		result = append(result, fund)
	}
	return result, nil
}
