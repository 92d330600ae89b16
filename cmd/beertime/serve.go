package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beertime/internal/api"
	"beertime/internal/jobs"
	"beertime/internal/logging"
	"beertime/internal/metrics"
	"beertime/internal/stats"
)

// cmdServe runs the API with the stats watcher and the day rollover job
// until interrupted.
func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "listen address, default from config")
	rollEvery := fs.Duration("rollover-interval", time.Minute, "max wait between logical day checks")
	return withApp(fs, args, func(ctx context.Context, a *app) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		listen := a.cfg.Server.Addr
		if *addr != "" {
			listen = *addr
		}
		metrics.StartServer(a.cfg.Metrics.Addr)

		watcher := stats.NewWatcher(a.db, a.prefs, a.clock, a.rule)
		go func() { _ = watcher.Run(ctx) }()
		go logUpdates(ctx, watcher)
		go func() { _ = jobs.RunRolloverLoop(ctx, jobs.NewRollover(a.clock, a.rule, watcher), *rollEvery) }()

		h := api.New(a.db, a.prefs, watcher, api.Options{
			Clock:         a.clock,
			Rule:          a.rule,
			DefaultAmount: a.cfg.Entry.DefaultAmount,
			WeeksPerPage:  a.cfg.Graph.WeeksPerPage,
		})
		srv := api.NewServer(listen, h, api.NewLimiter(a.cfg.Server.RPS, a.cfg.Server.Burst))
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Info("api_stop", nil)
		return srv.Shutdown(shutdownCtx)
	})
}

func logUpdates(ctx context.Context, w *stats.Watcher) {
	ch, cancel := w.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			s := w.Current()
			logging.Info("stats_updated", map[string]any{
				"date":  s.Today.Date.String(),
				"today": s.Today.Count,
				"week":  s.Week.Count,
			})
		}
	}
}
