package retention

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"blogchat/pkg/config"
	"blogchat/pkg/logger"
	"blogchat/pkg/store"
)

// Start launches the scheduled purge of old chat messages. Returns a
// cancel func; a disabled config yields a no-op cancel.
func Start(ctx context.Context, cfg *config.Config) (context.CancelFunc, error) {
	ret := cfg.Retention
	if !ret.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	period, err := ParsePeriod(ret.Period)
	if err != nil {
		return nil, fmt.Errorf("invalid retention period: %w", err)
	}

	cronExpr := ret.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid retention cron expression: %s", ret.Cron)
	}

	logger.Info("retention_enabled", "cron", cronExpr, "period", ret.Period, "dry_run", ret.DryRun)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, period, ret.BatchSize, ret.DryRun)
	return cancel, nil
}

// runScheduler sleeps until the next cron tick and runs one purge per
// tick. Scheduling drift after long sleeps is absorbed by recomputing
// the next tick each iteration.
func runScheduler(ctx context.Context, cronExpr string, period time.Duration, batch int, dryRun bool) {
	for {
		next, err := gronx.NextTickAfter(cronExpr, time.Now().UTC(), false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err.Error())
			select {
			case <-time.After(30 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-time.After(time.Until(next)):
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
		if err := RunOnce(period, batch, dryRun); err != nil {
			logger.Error("retention_run_error", "error", err.Error())
		}
	}
}

// RunOnce purges everything older than the period right now. Exported
// so tests and admin triggers can run a purge on demand.
func RunOnce(period time.Duration, batch int, dryRun bool) error {
	cutoff := time.Now().Add(-period)
	n, err := store.PruneBefore(cutoff, batch, dryRun)
	if err != nil {
		return err
	}
	logger.Info("retention_run_complete", "cutoff", cutoff.UTC().Format(time.RFC3339), "pruned", n, "dry_run", dryRun)
	return nil
}

// ParsePeriod accepts Go durations ("720h") plus a "d" suffix for
// days, the unit retention is usually configured in.
func ParsePeriod(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("period is required when retention is enabled")
	}
	if strings.HasSuffix(s, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
		if err != nil {
			return 0, fmt.Errorf("bad day count %q", s)
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("period must be positive")
	}
	return d, nil
}
