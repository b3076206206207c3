package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/logger"
	"github.com/chrisdamba/foodrollup/internal/models"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "foodrollup",
	Short: "Builds dashboard rollups from food delivery order batches",
	Long: `foodrollup reads a batch of food delivery orders from a file or Postgres and turns it into period
comparisons, status distributions, top-N rankings, retention, timing and trend reports for admin, restaurant,
customer and driver dashboards.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initEnv)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./foodrollup.yaml)")
	rootCmd.PersistentFlags().String("env", "", "runtime environment (development, local, production)")
	rootCmd.PersistentFlags().String("destination", "", "output destination: console, json, csv, parquet, kafka, rabbitmq, postgres")

	rootCmd.AddCommand(reportCmd, watchCmd, generateCmd)
}

// initEnv loads a .env file when present so FOODROLLUP_* variables can live next to the binary.
func initEnv() {
	_ = godotenv.Load()
}

// bindFlags binds the flags the user actually set onto viper keys. Unset flags leave config file, env and defaults alone.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}
	return nil
}

var persistentKeys = map[string]string{
	"env":         "env",
	"destination": "output.destination",
}

// loadConfig binds flags, reads the config and builds the logger for one command run.
func loadConfig(cmd *cobra.Command, keys map[string]string) (*models.Config, *zap.Logger, error) {
	if err := bindFlags(cmd, persistentKeys); err != nil {
		return nil, nil, err
	}
	if err := bindFlags(cmd, keys); err != nil {
		return nil, nil, err
	}

	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating logger: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("using config file", zap.String("path", used))
	}
	return cfg, log, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error %v\n", err)
		os.Exit(1)
	}
}
