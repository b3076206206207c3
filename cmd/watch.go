package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/output"
	"github.com/chrisdamba/foodrollup/internal/refresher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild and publish the rollup reports on an interval until interrupted",
	RunE:  runWatch,
}

func init() {
	addReportFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 0, "refresh interval, e.g. 30s or 5m")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	keys := map[string]string{"interval": "watch.interval"}
	for flag, key := range reportKeys {
		if flag == "now" {
			continue
		}
		keys[flag] = key
	}
	cfg, log, err := loadConfig(cmd, keys)
	if err != nil {
		return err
	}
	defer log.Sync()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, release, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer release()

	dest, err := output.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := dest.Close(); err != nil {
			log.Error("failed to close output", zap.Error(err))
		}
	}()

	log.Info("watching orders", zap.Duration("interval", cfg.Watch.Interval), zap.String("source", cfg.Source.Type))
	return refresher.New(src, dest, cfg, log).Run(ctx, cfg.Watch.Interval)
}
