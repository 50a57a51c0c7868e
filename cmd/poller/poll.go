package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/pkg/funding"
	"fujiscan-api/pkg/rates"
)

type aggregator interface {
	GetAggregatedFunding(ctx context.Context, assets, exchanges []string) (*funding.Response, error)
}

type poller struct {
	agg       aggregator
	assets    []string
	exchanges []string
	timeout   time.Duration
	now       func() time.Time
}

// poll runs one aggregation round and logs a signals line.
func (p *poller) poll(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.agg.GetAggregatedFunding(ctx, p.assets, p.exchanges)
	elapsed := time.Since(start)
	if err != nil {
		logx.Errorf("[poll] [ERROR] %v, took %dms", err, elapsed.Milliseconds())
		return
	}

	sig := funding.ComputeSignals(resp.Data, p.now())
	logx.Infof("[poll] [OK] %s, took %dms", summarize(resp, sig), elapsed.Milliseconds())
}

func summarize(resp *funding.Response, sig funding.Signals) string {
	parts := []string{
		fmt.Sprintf("tickers=%d", len(resp.Data)),
		fmt.Sprintf("venues=%d/%d", len(resp.Meta.Exchanges)-resp.Meta.FailedExchanges, len(resp.Meta.Exchanges)),
	}
	if sig.TopPositive != nil {
		parts = append(parts, "top+="+describe(sig.TopPositive))
	}
	if sig.TopNegative != nil {
		parts = append(parts, "top-="+describe(sig.TopNegative))
	}
	if sig.SoonestNext != nil {
		parts = append(parts, fmt.Sprintf("next=%s in %s", sig.SoonestNext.ID, sig.SoonestIn))
	}
	if resp.Meta.Stale {
		parts = append(parts, "stale")
	}
	return strings.Join(parts, " ")
}

func describe(t *funding.Ticker) string {
	return fmt.Sprintf("%s(%s)", t.ID, rates.FormatAPR(t.APRSigned))
}
