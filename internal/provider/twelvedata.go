package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ict-signal-engine/internal/domain"
	"ict-signal-engine/internal/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL    = "https://api.twelvedata.com"
	defaultOutputSize = 500
	maxOutputSize     = 5000
	maxBodyBytes      = 8 << 20
)

var (
	ErrRateLimited    = errors.New("provider rate limit exceeded")
	ErrProviderStatus = errors.New("provider returned an error")
)

var datetimeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

type TwelveDataConfig struct {
	BaseURL    string
	APIKey     string
	MaxRetries int
	HTTPClient *http.Client
	Scheduler  *Scheduler
	NewBackOff func() backoff.BackOff
}

// TwelveDataProvider fetches OHLCV time series from the Twelve Data REST API.
type TwelveDataProvider struct {
	tracer     trace.Tracer
	client     *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	scheduler  *Scheduler
	newBackOff func() backoff.BackOff
}

func NewTwelveDataProvider(tracer trace.Tracer, cfg TwelveDataConfig) *TwelveDataProvider {
	p := &TwelveDataProvider{
		tracer:     tracer,
		client:     cfg.HTTPClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		scheduler:  cfg.Scheduler,
		newBackOff: cfg.NewBackOff,
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 15 * time.Second}
	}
	if p.baseURL == "" {
		p.baseURL = DefaultBaseURL
	}
	if p.maxRetries < 0 {
		p.maxRetries = 0
	}
	if p.newBackOff == nil {
		p.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 2 * time.Second
			b.MaxInterval = 30 * time.Second
			return b
		}
	}
	return p
}

// FetchBars returns up to outputSize bars for the instrument in ascending time order.
func (p *TwelveDataProvider) FetchBars(ctx context.Context, instrument domain.Instrument, timeframe string, outputSize int) ([]domain.Bar, error) {
	ctx, span := p.tracer.Start(ctx, "twelvedata.fetch-bars")
	defer span.End()
	span.SetAttributes(attribute.String("asset", instrument.Asset), attribute.String("timeframe", timeframe))

	if outputSize <= 0 {
		outputSize = defaultOutputSize
	}
	if outputSize > maxOutputSize {
		outputSize = maxOutputSize
	}

	attempt := 0
	bars, err := backoff.Retry(ctx, func() ([]domain.Bar, error) {
		attempt++
		if err := p.scheduler.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		bars, err := p.fetchOnce(ctx, instrument, timeframe, outputSize)
		if err != nil {
			log.Warn().Err(err).Str("asset", instrument.Asset).Int("attempt", attempt).Msg("bar fetch failed")
		}
		return bars, err
	},
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxTries(uint(p.maxRetries+1)),
	)
	if err != nil {
		span.RecordError(err)
		metrics.ProviderRequests.WithLabelValues(instrument.Asset, outcomeOf(err)).Inc()
		return nil, fmt.Errorf("fetch %s bars: %w", instrument.Asset, err)
	}
	metrics.ProviderRequests.WithLabelValues(instrument.Asset, "ok").Inc()
	return bars, nil
}

func (p *TwelveDataProvider) fetchOnce(ctx context.Context, instrument domain.Instrument, timeframe string, outputSize int) ([]domain.Bar, error) {
	q := url.Values{}
	q.Set("symbol", instrument.ProviderSymbol)
	q.Set("interval", timeframe)
	q.Set("outputsize", strconv.Itoa(outputSize))
	q.Set("timezone", "UTC")
	q.Set("apikey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/time_series?"+q.Encode(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: http %d", ErrProviderStatus, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("%w: http %d", ErrProviderStatus, resp.StatusCode))
	}

	return parseTimeSeries(body, instrument.Asset, timeframe)
}

// parseTimeSeries decodes a time_series body. Values arrive newest first.
func parseTimeSeries(body []byte, asset, timeframe string) ([]domain.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, backoff.Permanent(fmt.Errorf("%w: malformed response body", ErrProviderStatus))
	}
	doc := gjson.ParseBytes(body)

	if doc.Get("status").String() == "error" {
		code := doc.Get("code").Int()
		msg := doc.Get("message").String()
		if code == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, msg)
		}
		return nil, backoff.Permanent(fmt.Errorf("%w: %d %s", ErrProviderStatus, code, msg))
	}

	values := doc.Get("values").Array()
	bars := make([]domain.Bar, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		v := values[i]
		ts, err := parseDatetime(v.Get("datetime").String())
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", ErrProviderStatus, err))
		}
		bars = append(bars, domain.Bar{
			Asset:     asset,
			Timeframe: timeframe,
			Timestamp: ts,
			Open:      v.Get("open").Float(),
			High:      v.Get("high").Float(),
			Low:       v.Get("low").Float(),
			Close:     v.Get("close").Float(),
			Volume:    v.Get("volume").Int(),
		})
	}
	return bars, nil
}

func parseDatetime(raw string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", raw)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrProviderStatus):
		return "provider_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "transport_error"
	}
}
