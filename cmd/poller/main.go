package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"fujiscan-api/internal/cli"
	"fujiscan-api/internal/config"
	"fujiscan-api/internal/svc"
	"fujiscan-api/pkg/funding"
)

const (
	pollTimeout     = 20 * time.Second // bound for one aggregation round
	shutdownTimeout = 10 * time.Second // grace period for an in-flight round
)

var (
	configFile = flag.String("f", "etc/fujiscan.yaml", "the config file")
	schedule   = flag.String("schedule", "@every 30s", "cron spec for polling")
	assets     = flag.String("assets", "", "comma separated assets, empty for all")
	exchanges  = flag.String("exchanges", "", "comma separated venues, empty for all")
	once       = flag.Bool("once", false, "poll a single time and exit")
)

func main() {
	flag.Parse()

	appCfg, err := config.Load(*configFile)
	if err != nil {
		logx.Errorf("[main] failed to load app config, using defaults: %v", err)
		appCfg = &config.Config{Env: "test", TTL: config.CacheTTL{Short: 10, Medium: 60}}
	}
	cli.LogConfigSummary(appCfg)

	svcCtx := svc.NewServiceContext(*appCfg)
	p := &poller{
		agg:       svcCtx.Aggregator,
		assets:    funding.ParseList(*assets),
		exchanges: funding.ParseList(*exchanges),
		timeout:   pollTimeout,
		now:       time.Now,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run once immediately on startup
	p.poll(ctx)
	if *once {
		return
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	if _, err := c.AddFunc(*schedule, func() { p.poll(ctx) }); err != nil {
		logx.Errorf("[main] invalid schedule %q: %v", *schedule, err)
		os.Exit(1)
	}
	c.Start()
	logx.Infof("[main] poller started with schedule %q. Press Ctrl+C to stop.", *schedule)

	<-ctx.Done()
	logx.Info("[main] shutdown signal received, stopping scheduler...")

	select {
	case <-c.Stop().Done():
		logx.Info("[main] scheduler stopped cleanly")
	case <-time.After(shutdownTimeout):
		logx.Info("[main] shutdown timeout exceeded, forcing exit")
	}
}
