package refresher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/chrisdamba/foodrollup/internal/models"
	"github.com/chrisdamba/foodrollup/internal/output"
	"github.com/chrisdamba/foodrollup/internal/repositories"
	"github.com/chrisdamba/foodrollup/internal/rollup"
)

const refreshKey = "refresh"

// OptionsFromConfig maps the loaded configuration onto builder options. Now stays zero
// unless the config pins the report clock.
func OptionsFromConfig(cfg *models.Config) (rollup.Options, error) {
	period := rollup.PeriodWeek
	if cfg.Period != "" {
		p, err := rollup.ParsePeriod(cfg.Period)
		if err != nil {
			return rollup.Options{}, err
		}
		period = p
	}
	alignment, err := rollup.ParseAlignment(cfg.Alignment)
	if err != nil {
		return rollup.Options{}, err
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return rollup.Options{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}

	return rollup.Options{
		Now:                      cfg.Now,
		Period:                   period,
		Alignment:                alignment,
		WeekStart:                cfg.WeekStart,
		Location:                 loc,
		TopN:                     cfg.TopN,
		IncludeUndatedInLifetime: cfg.IncludeUndatedInLifetime,
		DurationFallback:         cfg.DurationFallback,
		Scope:                    scopeFromConfig(cfg.Scope),
	}, nil
}

func scopeFromConfig(s models.ScopeConfig) rollup.Scope {
	return rollup.Scope{Kind: rollup.ScopeKind(s.Kind), ID: s.ID}
}

// Refresher loads one order batch per refresh, builds the configured scopes from it and publishes each report.
type Refresher struct {
	source repositories.OrderSource
	dest   output.OutputDestination
	cfg    *models.Config
	logger *zap.Logger
	now    func() time.Time
	group  singleflight.Group
}

func New(source repositories.OrderSource, dest output.OutputDestination, cfg *models.Config, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		source: source,
		dest:   dest,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Refresh builds and publishes every configured report. Concurrent callers share one in-flight refresh.
func (r *Refresher) Refresh(ctx context.Context) ([]*rollup.Report, error) {
	v, err, shared := r.group.Do(refreshKey, func() (interface{}, error) {
		return r.refresh(ctx)
	})
	if shared {
		r.logger.Debug("joined in-flight refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.([]*rollup.Report), nil
}

func (r *Refresher) refresh(ctx context.Context) ([]*rollup.Report, error) {
	started := time.Now()
	opts, err := OptionsFromConfig(r.cfg)
	if err != nil {
		return nil, err
	}
	if opts.Now.IsZero() {
		opts.Now = r.now()
	}
	opts.Logger = r.logger

	orders, err := r.source.LoadOrders(ctx, r.cfg.Source.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	scopes := []rollup.Scope{opts.Scope}
	for _, s := range r.cfg.ScopedReports {
		scopes = append(scopes, scopeFromConfig(s))
	}

	reports := make([]*rollup.Report, len(scopes))
	g, gctx := errgroup.WithContext(ctx)
	for i, scope := range scopes {
		i, scope := i, scope
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scoped := opts
			scoped.Scope = scope
			report, err := rollup.Build(orders, scoped)
			if err != nil {
				return fmt.Errorf("failed to build %s report: %w", scope.String(), err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	topic := r.cfg.Output.Topic
	for _, report := range reports {
		if err := output.Publish(r.dest, topic, report); err != nil {
			return nil, err
		}
	}

	r.logger.Info("refreshed rollup reports",
		zap.Int("orders", len(orders)),
		zap.Int("reports", len(reports)),
		zap.String("period", string(opts.Period)),
		zap.Duration("took", time.Since(started)),
	)
	return reports, nil
}

// Run refreshes once, then on every interval tick until ctx is cancelled. Failed refreshes are logged and retried
// on the next tick.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Refresh(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			r.logger.Error("refresh failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
