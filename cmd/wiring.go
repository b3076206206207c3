package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/models"
	"github.com/chrisdamba/foodrollup/internal/repositories"
	"github.com/chrisdamba/foodrollup/internal/repositories/postgres"
	"github.com/chrisdamba/foodrollup/internal/source"
)

// openSource returns the configured order source and a function releasing it.
func openSource(ctx context.Context, cfg *models.Config, log *zap.Logger) (repositories.OrderSource, func(), error) {
	switch cfg.Source.Type {
	case "", "file":
		if cfg.Source.Path == "" {
			return nil, nil, fmt.Errorf("file source needs a path (--input or source.path)")
		}
		return source.NewFileSource(cfg.Source.Path, cfg.Source.Format, log), func() {}, nil
	case "postgres":
		store, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return store.Orders, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unsupported source type: %s", cfg.Source.Type)
}
