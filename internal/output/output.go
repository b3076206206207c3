package output

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/cloudwriter"
	"github.com/chrisdamba/foodrollup/internal/models"
	"github.com/chrisdamba/foodrollup/internal/rollup"
)

// OutputDestination receives encoded report envelopes, one message per report.
type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// Envelope wraps a report with the fields sinks partition and key on.
type Envelope struct {
	Timestamp int64          `json:"timestamp"` // unix seconds of the report clock
	Scope     string         `json:"scope"`
	Period    string         `json:"period"`
	Report    *rollup.Report `json:"report"`
}

func Encode(report *rollup.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}
	return json.Marshal(Envelope{
		Timestamp: report.GeneratedAt.Unix(),
		Scope:     report.Scope.String(),
		Period:    string(report.Period),
		Report:    report,
	})
}

func decodeEnvelope(msg []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return env, fmt.Errorf("invalid report envelope: %w", err)
	}
	if env.Report == nil {
		return env, fmt.Errorf("invalid report envelope: missing report")
	}
	return env, nil
}

// Publish encodes report and hands it to dest under topic.
func Publish(dest OutputDestination, topic string, report *rollup.Report) error {
	msg, err := Encode(report)
	if err != nil {
		return err
	}
	if err := dest.WriteMessage(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s report: %w", report.Scope.String(), err)
	}
	return nil
}

// partitionPath is the hive-style directory of a report timestamp, in UTC.
func partitionPath(timestamp int64) string {
	t := time.Unix(timestamp, 0).UTC()
	year, month, day := t.Date()
	return path.Join(
		fmt.Sprintf("year=%d", year),
		fmt.Sprintf("month=%02d", month),
		fmt.Sprintf("day=%02d", day),
		fmt.Sprintf("hour=%02d", t.Hour()),
	)
}

// New builds the destination named by cfg.Output.Destination.
func New(ctx context.Context, cfg *models.Config, logger *zap.Logger) (OutputDestination, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := cfg.Output
	switch out.Destination {
	case "", "console":
		return NewConsoleOutput(nil), nil
	case "json":
		return NewJSONOutput(out.Path, out.Folder), nil
	case "csv":
		return NewCSVOutput(out.Path, out.Folder), nil
	case "parquet":
		var factory cloudwriter.CloudWriterFactory
		if out.Cloud {
			f, err := cloudwriter.New(ctx, cfg.CloudStorage)
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			factory = f
		}
		return NewParquetOutput(out.Path, out.Folder, factory, cfg.CloudStorage.BucketName, logger), nil
	case "kafka":
		return NewKafkaOutput(cfg.Kafka, logger)
	case "rabbitmq":
		return NewRabbitOutput(ctx, cfg.RabbitMQ, logger)
	case "postgres":
		return NewPostgresOutput(ctx, &cfg.Database)
	}
	return nil, fmt.Errorf("unsupported output destination: %s", out.Destination)
}
