package archive

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// ProberConfig controls the response-time prober.
type ProberConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyProber implements Prober with a single bounded GET per probe, executed
// through a Colly collector. A non-2xx status, a transport error, or a
// timeout all count as probe failures.
type CollyProber struct {
	cfg           ProberConfig
	baseCollector *colly.Collector
}

// NewCollyProber builds a CollyProber.
func NewCollyProber(cfg ProberConfig) *CollyProber {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultProbeTimeout
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.AllowURLRevisit = true
	c.WithTransport(newHTTPTransport())

	return &CollyProber{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Probe issues a timed GET against rawURL and returns the elapsed time on
// success.
func (p *CollyProber) Probe(ctx context.Context, rawURL string) (time.Duration, error) {
	collector := p.baseCollector.Clone()
	if p.cfg.UserAgent != "" {
		collector.UserAgent = p.cfg.UserAgent
	}
	collector.SetRequestTimeout(p.cfg.Timeout)

	var (
		elapsed  time.Duration
		fetchErr error
	)
	start := time.Now()

	collector.OnResponse(func(_ *colly.Response) {
		elapsed = time.Since(start)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("probe canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return 0, fmt.Errorf("probe visit failed: %w", err)
		}
		if fetchErr != nil {
			return 0, fmt.Errorf("probe response failed: %w", fetchErr)
		}
		return elapsed, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
