package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/factories"
	"github.com/chrisdamba/foodrollup/internal/models"
	"github.com/chrisdamba/foodrollup/internal/repositories"
	"github.com/chrisdamba/foodrollup/internal/repositories/postgres"
	"github.com/chrisdamba/foodrollup/internal/source"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic order history for demos and local testing",
	RunE:  runGenerate,
}

var generateKeys = map[string]string{
	"seed":         "generator.seed",
	"orders":       "generator.orders",
	"users":        "generator.users",
	"restaurants":  "generator.restaurants",
	"partners":     "generator.partners",
	"start-date":   "generator.start_date",
	"end-date":     "generator.end_date",
	"cancel-rate":  "generator.cancel_rate",
	"undated-rate": "generator.undated_rate",
	"output-file":  "generator.output_file",
	"seed-db":      "generator.seed_db",
	"reset":        "generator.reset",
}

func init() {
	f := generateCmd.Flags()
	f.Int64("seed", 42, "random seed")
	f.Int("orders", 2000, "number of orders")
	f.Int("users", 300, "number of customers")
	f.Int("restaurants", 40, "number of restaurants")
	f.Int("partners", 25, "number of delivery partners")
	f.String("start-date", "", "first order day as RFC3339 (default 90 days before end)")
	f.String("end-date", "", "order history end as RFC3339 (default now)")
	f.Float64("cancel-rate", 0.08, "share of cancelled orders")
	f.Float64("undated-rate", 0.01, "share of orders without a creation time")
	f.String("output-file", "", "write orders to this file (.json, .ndjson or .csv)")
	f.Bool("seed-db", false, "insert the generated catalogue and orders into Postgres")
	f.Bool("reset", false, "with --seed-db, empty the seeded tables first")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd, generateKeys)
	if err != nil {
		return err
	}
	defer log.Sync()

	gen := cfg.Generator
	if gen.OutputFile == "" && !gen.SeedDB {
		return fmt.Errorf("nothing to do: set --output-file and/or --seed-db")
	}

	bar := progressbar.Default(int64(gen.Orders), "generating orders")
	ds, err := factories.Generate(gen, time.Now().UTC(), func() { _ = bar.Add(1) })
	if err != nil {
		return err
	}
	_ = bar.Finish()

	log.Info("generated dataset",
		zap.Int("orders", len(ds.Orders)),
		zap.Int("users", len(ds.Users)),
		zap.Int("restaurants", len(ds.Restaurants)),
		zap.Int("menu_items", len(ds.MenuItems)),
		zap.Int("partners", len(ds.Partners)),
	)

	if gen.OutputFile != "" {
		if err := writeOrders(gen.OutputFile, ds.Orders); err != nil {
			return err
		}
		log.Info("orders written", zap.String("path", gen.OutputFile))
	}

	if gen.SeedDB {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := seedDatabase(ctx, cfg.Database, ds, gen.Reset, log); err != nil {
			return err
		}
	}
	return nil
}

func writeOrders(path string, orders []models.Order) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := source.Encode(file, orders, source.FormatFromPath(path)); err != nil {
		file.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return file.Close()
}

func seedDatabase(ctx context.Context, cfg models.DatabaseConfig, ds *factories.Dataset, reset bool, log *zap.Logger) error {
	store, err := postgres.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := postgres.EnsureSchema(ctx, store.Pool); err != nil {
		return err
	}
	tables := store.Tables()
	if reset {
		if err := repositories.Reset(ctx, tables); err != nil {
			return err
		}
		log.Info("seeded tables cleared", zap.String("database", cfg.DBName))
	}

	if err := store.Users.BulkCreate(ctx, ds.Users); err != nil {
		return fmt.Errorf("error seeding users: %w", err)
	}
	if err := store.Restaurants.BulkCreate(ctx, ds.Restaurants); err != nil {
		return fmt.Errorf("error seeding restaurants: %w", err)
	}
	if err := store.MenuItems.BulkCreate(ctx, ds.MenuItems); err != nil {
		return fmt.Errorf("error seeding menu items: %w", err)
	}
	if err := store.Partners.BulkCreate(ctx, ds.Partners); err != nil {
		return fmt.Errorf("error seeding delivery partners: %w", err)
	}
	if err := store.Orders.BulkCreate(ctx, ds.Orders); err != nil {
		return fmt.Errorf("error seeding orders: %w", err)
	}

	counts, err := repositories.Counts(ctx, tables)
	if err != nil {
		return err
	}
	fields := []zap.Field{zap.String("database", cfg.DBName)}
	for _, c := range counts {
		fields = append(fields, zap.Int(c.Name, c.Rows))
	}
	log.Info("database seeded", fields...)
	return nil
}
