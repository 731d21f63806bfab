package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"golang.org/x/time/rate"

	"gridalpha/internal/logger"
	"gridalpha/internal/model"
)

// EPT is the market clock for PJM data.
var EPT = mustLoadLocation("America/New_York")

const (
	feedDateLayout  = "2006-01-02"
	feedTimeLayout  = "2006-01-02T15:04:05"
	subscriptionHdr = "Ocp-Apim-Subscription-Key"
	dayAheadPath    = "/da_hrl_lmps"
	realTimePath    = "/rt_unverified_hrl_lmps"
)

// FeedClient fetches hourly zonal LMPs, day-ahead and real-time, from a PJM
// Data Miner style endpoint.
type FeedClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewFeedClient(apiKey, baseURL string, timeout time.Duration, log *logger.Logger) *FeedClient {
	if baseURL == "" {
		baseURL = "https://api.pjm.com/api/v1"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FeedClient{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		log:     log.Component("feed"),
	}
}

// WithRateLimit caps outgoing requests at rps with the given burst. Calls
// wait for a token or for ctx to end.
func (c *FeedClient) WithRateLimit(rps float64, burst int) *FeedClient {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// FeedError is a failed feed request. StatusCode is 0 when the request never
// reached the server.
type FeedError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *FeedError) Error() string {
	return e.Message
}

type feedItem struct {
	DatetimeBeginningEPT string  `json:"datetime_beginning_ept"`
	PnodeName            string  `json:"pnode_name"`
	TotalLMPDA           float64 `json:"total_lmp_da"`
	TotalLMPRT           float64 `json:"total_lmp_rt"`
}

type feedResponse struct {
	Items     []feedItem `json:"items"`
	TotalRows int        `json:"totalRows"`
}

// market describes one hourly LMP dataset of the feed.
type market struct {
	name  string
	path  string
	field string
	price func(feedItem) float64
	// partial accepts a day that is still being published: a run of hours
	// from midnight rather than all 24.
	partial bool
}

var (
	dayAheadMarket = market{
		name:  "day-ahead",
		path:  dayAheadPath,
		field: "total_lmp_da",
		price: func(it feedItem) float64 { return it.TotalLMPDA },
	}
	realTimeMarket = market{
		name:    "real-time",
		path:    realTimePath,
		field:   "total_lmp_rt",
		price:   func(it feedItem) float64 { return it.TotalLMPRT },
		partial: true,
	}
)

// DayAhead returns the 24 hourly day-ahead prices for zone on date (EPT).
func (c *FeedClient) DayAhead(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error) {
	return c.fetch(ctx, dayAheadMarket, zone, date)
}

// RealTime returns the hourly real-time prices published so far for zone on
// date (EPT). Prices covers hour 0 up to the last published hour.
func (c *FeedClient) RealTime(ctx context.Context, zone string, date time.Time) (model.PriceCurve, error) {
	return c.fetch(ctx, realTimeMarket, zone, date)
}

func (c *FeedClient) fetch(ctx context.Context, m market, zone string, date time.Time) (model.PriceCurve, error) {
	if c.APIKey == "" {
		return model.PriceCurve{}, &FeedError{Code: "MISSING_API_KEY", Message: "feed API key is required"}
	}
	day := date.Format(feedDateLayout)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return model.PriceCurve{}, &FeedError{Code: "UNREACHABLE", Message: fmt.Sprintf("feed request not sent: %v", err)}
		}
	}

	u, err := url.Parse(c.BaseURL + m.path)
	if err != nil {
		return model.PriceCurve{}, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("startRow", "1")
	q.Set("rowCount", "100")
	q.Set("type", "ZONE")
	q.Set("pnode_name", zone)
	q.Set("datetime_beginning_ept", day+" 00:00to"+day+" 23:00")
	q.Set("fields", "datetime_beginning_ept,pnode_name,"+m.field)
	q.Set("sort", "datetime_beginning_ept")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return model.PriceCurve{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(subscriptionHdr, c.APIKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.log.Warnw("request failed", "market", m.name, "zone", zone, "date", day, "error", err, "duration", elapsed)
		return model.PriceCurve{}, &FeedError{Code: "UNREACHABLE", Message: fmt.Sprintf("feed request failed: %v", err)}
	}
	defer resp.Body.Close()

	c.log.Debugw("response", "market", m.name, "status", resp.StatusCode, "zone", zone, "date", day, "duration", elapsed)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.PriceCurve{}, &FeedError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "feed rejected the subscription key",
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return model.PriceCurve{}, &FeedError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("feed rate limit exceeded, retry after %q", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return model.PriceCurve{}, &FeedError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("feed returned status %d", resp.StatusCode),
		}
	}

	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.PriceCurve{}, &FeedError{
			StatusCode: resp.StatusCode,
			Code:       "BAD_PAYLOAD",
			Message:    fmt.Sprintf("failed to decode feed response: %v", err),
		}
	}

	curve, err := curveFromItems(zone, date, body.Items, m)
	if err != nil {
		return model.PriceCurve{}, err
	}
	c.log.Infow("fetched curve", "market", m.name, "zone", zone, "date", day, "rows", len(body.Items))
	return curve, nil
}

// curveFromItems places each row at its EPT hour-of-day. Every hour must be
// present exactly once, except the hour a spring-forward day skips, which
// repeats the hour before it. Partial markets stop at the first missing hour.
func curveFromItems(zone string, date time.Time, items []feedItem, m market) (model.PriceCurve, error) {
	prices := make([]float64, model.HoursPerDay)
	seen := make([]bool, model.HoursPerDay)
	for _, it := range items {
		ts, err := time.ParseInLocation(feedTimeLayout, it.DatetimeBeginningEPT, EPT)
		if err != nil {
			return model.PriceCurve{}, &FeedError{Code: "BAD_PAYLOAD", Message: fmt.Sprintf("bad timestamp %q", it.DatetimeBeginningEPT)}
		}
		h := ts.Hour()
		if seen[h] {
			// DST fall-back repeats an hour; keep the first.
			continue
		}
		seen[h] = true
		prices[h] = m.price(it)
	}
	if gap := skippedHour(date); gap > 0 && !seen[gap] && seen[gap-1] {
		prices[gap] = prices[gap-1]
		seen[gap] = true
	}

	n := model.HoursPerDay
	if m.partial {
		n = 0
		for n < model.HoursPerDay && seen[n] {
			n++
		}
		for h := n; h < model.HoursPerDay; h++ {
			if seen[h] {
				return model.PriceCurve{}, &FeedError{Code: "INCOMPLETE", Message: fmt.Sprintf("feed returned no price for hour %d", n)}
			}
		}
		if n == 0 {
			return model.PriceCurve{}, &FeedError{Code: "INCOMPLETE", Message: "feed returned no prices"}
		}
	}
	for h := 0; h < n; h++ {
		if !seen[h] {
			return model.PriceCurve{}, &FeedError{Code: "INCOMPLETE", Message: fmt.Sprintf("feed returned no price for hour %d", h)}
		}
	}
	return model.PriceCurve{
		Zone:   zone,
		Date:   DayOf(date),
		Prices: prices[:n],
		Source: model.SourceLive,
	}, nil
}

// skippedHour returns the EPT hour-of-day that does not exist on date
// because clocks spring forward, or -1.
func skippedHour(date time.Time) int {
	d := DayOf(date)
	for h := 0; h < model.HoursPerDay; h++ {
		if time.Date(d.Year(), d.Month(), d.Day(), h, 0, 0, 0, EPT).Hour() != h {
			return h
		}
	}
	return -1
}

// DayOf truncates t to midnight EPT of the same calendar date.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, EPT)
}

// ParseDay parses YYYY-MM-DD as a market day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(feedDateLayout, s, EPT)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}
