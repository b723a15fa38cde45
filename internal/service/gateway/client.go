package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"StonkPulse/internal/domain/models"
	"StonkPulse/internal/domain/repository"
	pkghttp "StonkPulse/pkg/http"
	"StonkPulse/pkg/logger"
	"StonkPulse/pkg/metrics"

	"golang.org/x/time/rate"
)

const (
	EndpointPrice     = "price"
	EndpointMacro     = "macro"
	EndpointSentiment = "fear-greed"
	EndpointNews      = "news"
	EndpointSeries    = "series"

	NewsModeRelay = "relay"
	NewsModeRSS   = "rss"
)

// Client implements repository.Gateway over the upstream HTTP collaborators.
// It never caches.
type Client struct {
	http    *pkghttp.Client
	baseURL string

	newsMode     string
	newsRelayURL string
	newsFeedURL  string

	limiter *rate.Limiter
	metrics repository.Metrics
	log     *logger.Logger
	now     func() time.Time
}

var _ repository.Gateway = (*Client)(nil)

// Option configures Client.
type Option func(*Client)

// WithLimiter throttles every upstream call. A nil limiter disables throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithMetrics records one outcome per call.
func WithMetrics(m repository.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for debug tracing of calls.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithNews selects the news source: the rss2json relay wrapping feedURL,
// or feedURL fetched and parsed as RSS directly.
func WithNews(mode, relayURL, feedURL string) Option {
	return func(c *Client) {
		c.newsMode = mode
		c.newsRelayURL = relayURL
		c.newsFeedURL = feedURL
	}
}

// WithClock overrides the time source used for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a gateway client rooted at baseURL.
func New(baseURL string, hc *pkghttp.Client, opts ...Option) *Client {
	c := &Client{
		http:     hc,
		baseURL:  strings.TrimRight(baseURL, "/"),
		newsMode: NewsModeRelay,
		metrics:  metrics.Nop{},
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = pkghttp.NewClient()
	}
	return c
}

// FetchPrice calls GET /price/{symbol}.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (models.Quote, error) {
	var body priceBody
	var q models.Quote
	err := c.call(ctx, EndpointPrice, symbol, c.path("price", symbol), pkghttp.FormatJSON, &body, func() (err error) {
		q, err = decodePrice(symbol, body, c.now())
		return err
	})
	return q, err
}

// FetchMacro calls GET /macro.
func (c *Client) FetchMacro(ctx context.Context) (models.MacroReading, error) {
	var body macroBody
	var r models.MacroReading
	err := c.call(ctx, EndpointMacro, "", c.baseURL+"/macro", pkghttp.FormatJSON, &body, func() (err error) {
		r, err = decodeMacro(body)
		return err
	})
	return r, err
}

// FetchSentiment calls GET /fear-greed.
func (c *Client) FetchSentiment(ctx context.Context) (models.SentimentReading, error) {
	var body sentimentBody
	var r models.SentimentReading
	err := c.call(ctx, EndpointSentiment, "", c.baseURL+"/fear-greed", pkghttp.FormatJSON, &body, func() (err error) {
		r, err = decodeSentiment(body)
		return err
	})
	return r, err
}

// FetchNews reads the configured news feed, through the relay or as raw RSS.
func (c *Client) FetchNews(ctx context.Context) ([]models.NewsItem, error) {
	var items []models.NewsItem
	if c.newsMode == NewsModeRSS {
		var body rssBody
		err := c.call(ctx, EndpointNews, "", c.newsFeedURL, pkghttp.FormatXML, &body, func() (err error) {
			items, err = decodeRSS(body)
			return err
		})
		return items, err
	}

	u, err := c.relayURL()
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Endpoint: EndpointNews, Err: err}
	}
	var body relayBody
	err = c.call(ctx, EndpointNews, "", u, pkghttp.FormatJSON, &body, func() (err error) {
		items, err = decodeRelay(body)
		return err
	})
	return items, err
}

// FetchSeries calls GET /stock/{symbol}.
func (c *Client) FetchSeries(ctx context.Context, symbol string) (models.Series, error) {
	var body chartBody
	var s models.Series
	err := c.call(ctx, EndpointSeries, symbol, c.path("stock", symbol), pkghttp.FormatJSON, &body, func() (err error) {
		s, err = decodeSeries(symbol, body)
		return err
	})
	return s, err
}

// relayURL adds the feed as rss_url, keeping any query the relay URL
// already carries (an api_key, for instance).
func (c *Client) relayURL() (string, error) {
	u, err := url.Parse(c.newsRelayURL)
	if err != nil {
		return "", fmt.Errorf("relay url: %w", err)
	}
	if c.newsFeedURL != "" {
		q := u.Query()
		q.Set("rss_url", c.newsFeedURL)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) path(prefix, symbol string) string {
	return c.baseURL + "/" + prefix + "/" + url.PathEscape(symbol)
}

// call performs one GET, decodes into dest, runs decode and records the outcome.
// Any failure comes back as *FetchError.
func (c *Client) call(ctx context.Context, endpoint, symbol, u, format string, dest any, decode func() error) error {
	start := time.Now()
	err := c.wait(ctx)
	if err == nil {
		err = c.http.SendAndParse(ctx, &pkghttp.RequestOptions{URL: u, Format: format}, dest)
	}
	if err == nil {
		err = decode()
	}

	if err != nil {
		fe := classify(endpoint, symbol, err)
		c.metrics.RecordFetch(endpoint, string(fe.Kind))
		c.log.Debug("gateway call failed",
			logger.String("endpoint", endpoint),
			logger.String("symbol", symbol),
			logger.String("kind", string(fe.Kind)),
			logger.Duration("took", time.Since(start)),
			logger.Error(err),
		)
		return fe
	}
	c.metrics.RecordFetch(endpoint, "ok")
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
