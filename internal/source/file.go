package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/models"
)

// FileSource reads orders from a JSON, NDJSON or CSV export.
type FileSource struct {
	path   string
	format string
	logger *zap.Logger
}

// NewFileSource infers the format from the extension when format is empty.
func NewFileSource(path, format string, logger *zap.Logger) *FileSource {
	if format == "" {
		format = FormatFromPath(path)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{path: path, format: format, logger: logger}
}

func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return FormatJSON
}

// LoadOrders returns at most limit orders in file order. limit <= 0 reads everything.
func (s *FileSource) LoadOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("error opening order file: %w", err)
	}
	defer f.Close()

	decoded, err := Decode(f, s.format)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", s.path, err)
	}
	if decoded.Rejected > 0 {
		s.logger.Warn("skipped malformed order records",
			zap.String("path", s.path),
			zap.Int("rejected", decoded.Rejected),
		)
	}
	if decoded.Defaulted > 0 {
		s.logger.Warn("kept order records with unreadable fields",
			zap.String("path", s.path),
			zap.Int("records", decoded.Defaulted),
		)
	}

	orders := decoded.Orders
	if limit > 0 && len(orders) > limit {
		s.logger.Info("order batch truncated",
			zap.String("path", s.path),
			zap.Int("read", len(orders)),
			zap.Int("limit", limit),
		)
		orders = orders[:limit]
	}
	return orders, nil
}
