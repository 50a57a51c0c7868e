// Package venuehttp builds the outbound HTTP stack shared by every funding
// venue: user agent, per-venue rate limit, retry with backoff, a circuit
// breaker and an optional GET revalidation cache.
package venuehttp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultUserAgent  = "FujiScan/1.0"
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 2
	defaultBackoffMin = 150 * time.Millisecond
	defaultBackoffMax = 2 * time.Second
)

// Options configures one venue transport.
type Options struct {
	UserAgent    string
	RatePerSec   float64
	Burst        int
	MaxRetries   int
	BackoffMin   time.Duration
	BackoffMax   time.Duration
	BreakerDelay time.Duration
	Revalidate   time.Duration
	Store        Store
	KeyFunc      func(venue, url string) string
	Base         http.RoundTripper
}

// Option mutates Options.
type Option func(*Options)

func WithUserAgent(ua string) Option { return func(o *Options) { o.UserAgent = ua } }

// WithRateLimit caps outbound requests per second. Zero disables limiting.
func WithRateLimit(perSec float64, burst int) Option {
	return func(o *Options) { o.RatePerSec, o.Burst = perSec, burst }
}

func WithMaxRetries(n int) Option { return func(o *Options) { o.MaxRetries = n } }

func WithBackoff(min, max time.Duration) Option {
	return func(o *Options) { o.BackoffMin, o.BackoffMax = min, max }
}

func WithBreakerDelay(d time.Duration) Option { return func(o *Options) { o.BreakerDelay = d } }

// WithRevalidation caches successful GET bodies in store for ttl.
func WithRevalidation(store Store, ttl time.Duration) Option {
	return func(o *Options) { o.Store, o.Revalidate = store, ttl }
}

// WithKeyFunc overrides how revalidation keys are derived.
func WithKeyFunc(fn func(venue, url string) string) Option {
	return func(o *Options) { o.KeyFunc = fn }
}

// WithBase swaps the innermost round tripper (tests, recorders).
func WithBase(rt http.RoundTripper) Option { return func(o *Options) { o.Base = rt } }

// Transport is an http.RoundTripper bound to a single venue.
type Transport struct {
	venue    string
	opts     Options
	base     http.RoundTripper
	limiter  *rate.Limiter
	pipeline failsafe.Executor[*http.Response]
	group    singleflight.Group
}

// NewTransport assembles the stack for venue.
func NewTransport(venue string, opts ...Option) *Transport {
	o := Options{
		UserAgent:    defaultUserAgent,
		MaxRetries:   defaultMaxRetries,
		BackoffMin:   defaultBackoffMin,
		BackoffMax:   defaultBackoffMax,
		BreakerDelay: 10 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.Base == nil {
		o.Base = http.DefaultTransport
	}
	if o.KeyFunc == nil {
		o.KeyFunc = func(venue, url string) string { return venue + ":" + url }
	}
	if o.BackoffMax < o.BackoffMin {
		o.BackoffMax = o.BackoffMin
	}

	t := &Transport{venue: venue, opts: o, base: o.Base}
	if o.RatePerSec > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(o.RatePerSec), burst)
	}

	retryable := func(resp *http.Response, err error) bool {
		if err != nil {
			return !isContextErr(err)
		}
		return resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
	}
	retry := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(retryable).
		WithBackoff(o.BackoffMin, o.BackoffMax).
		WithMaxRetries(max(o.MaxRetries, 0)).
		Build()
	breaker := circuitbreaker.NewBuilder[*http.Response]().
		HandleIf(func(resp *http.Response, err error) bool {
			if err != nil {
				return !isContextErr(err)
			}
			return resp.StatusCode >= http.StatusInternalServerError
		}).
		WithFailureThresholdRatio(5, 10).
		WithDelay(o.BreakerDelay).
		Build()
	t.pipeline = failsafe.With[*http.Response](retry, breaker)
	return t
}

// NewClient wraps NewTransport in an http.Client with the given timeout.
func NewClient(venue string, timeout time.Duration, opts ...Option) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout, Transport: NewTransport(venue, opts...)}
}

// Venue returns the venue the transport is bound to.
func (t *Transport) Venue() string { return t.venue }

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.opts.Store == nil || t.opts.Revalidate <= 0 {
		return t.upstream(req)
	}

	ctx := req.Context()
	key := t.opts.KeyFunc(t.venue, req.URL.String())
	if e, ok := t.lookup(ctx, key); ok {
		upstreamRequests.Inc(t.venue, "cache_hit")
		return e.response(req), nil
	}

	v, err, _ := t.group.Do(key, func() (any, error) {
		resp, err := t.upstream(req)
		if err != nil {
			return nil, err
		}
		e, err := captureEntry(resp)
		if err != nil {
			return nil, err
		}
		if e.Status >= 200 && e.Status < 300 {
			t.save(ctx, key, e)
		}
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry).response(req), nil
}

func (t *Transport) upstream(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	var last *http.Response
	resp, err := t.pipeline.GetWithExecution(func(exec failsafe.Execution[*http.Response]) (*http.Response, error) {
		attempt, err := t.prepare(req)
		if err != nil {
			return nil, err
		}
		if exec.Attempts() > 1 {
			logx.WithContext(ctx).Infof("%s: retrying %s %s attempt=%d", t.venue, req.Method, req.URL.Path, exec.Attempts())
		}
		resp, err := t.base.RoundTrip(attempt)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			// release the connection before a possible retry drops this response
			if err := bufferBody(resp); err != nil {
				return nil, err
			}
		}
		last = resp
		return resp, nil
	})
	if resp == nil {
		resp = last
	}
	upstreamLatency.Observe(time.Since(start).Milliseconds(), t.venue)

	if resp != nil {
		upstreamRequests.Inc(t.venue, statusClass(resp.StatusCode))
		if err != nil {
			logx.WithContext(ctx).Errorf("%s: %s %s gave up err=%v", t.venue, req.Method, req.URL.Path, err)
		}
		return resp, nil
	}
	upstreamRequests.Inc(t.venue, "error")
	return nil, err
}

func (t *Transport) prepare(req *http.Request) (*http.Request, error) {
	attempt := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		attempt.Body = body
	}
	if attempt.Header.Get("User-Agent") == "" && t.opts.UserAgent != "" {
		attempt.Header.Set("User-Agent", t.opts.UserAgent)
	}
	return attempt, nil
}

func (t *Transport) lookup(ctx context.Context, key string) (*entry, bool) {
	raw, ok, err := t.opts.Store.Get(ctx, key)
	if err != nil {
		logx.WithContext(ctx).Errorf("%s: revalidation lookup key=%s err=%v", t.venue, key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	e, err := decodeEntry(raw)
	if err != nil {
		logx.WithContext(ctx).Errorf("%s: revalidation decode key=%s err=%v", t.venue, key, err)
		return nil, false
	}
	return e, true
}

func (t *Transport) save(ctx context.Context, key string, e *entry) {
	raw, err := e.encode()
	if err == nil {
		err = t.opts.Store.Set(ctx, key, raw, t.opts.Revalidate)
	}
	if err != nil {
		logx.WithContext(ctx).Errorf("%s: revalidation store key=%s err=%v", t.venue, key, err)
	}
}

func bufferBody(resp *http.Response) error {
	if resp.Body == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
