package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	admissionsAllowed metric.Int64Counter
	admissionsDenied  metric.Int64Counter
	predictions       metric.Int64Counter
	segmentRows       metric.Int64Counter
	recommendations   metric.Int64Counter
	flagWrites        metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "cohortlens"
	}
	meter := provider.Meter(name)

	admissionsAllowed, err := meter.Int64Counter("cohortlens_admissions_allowed_total")
	if err != nil {
		return nil, err
	}
	admissionsDenied, err := meter.Int64Counter("cohortlens_admissions_denied_total")
	if err != nil {
		return nil, err
	}
	predictions, err := meter.Int64Counter("cohortlens_predictions_total")
	if err != nil {
		return nil, err
	}
	segmentRows, err := meter.Int64Counter("cohortlens_segment_rows_total")
	if err != nil {
		return nil, err
	}
	recommendations, err := meter.Int64Counter("cohortlens_recommendations_total")
	if err != nil {
		return nil, err
	}
	flagWrites, err := meter.Int64Counter("cohortlens_flag_writes_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		admissionsAllowed: admissionsAllowed,
		admissionsDenied:  admissionsDenied,
		predictions:       predictions,
		segmentRows:       segmentRows,
		recommendations:   recommendations,
		flagWrites:        flagWrites,
	}, nil
}

// RecordAdmissionAllowed increments accepted quota admissions.
func (m *Metrics) RecordAdmissionAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.admissionsAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAdmissionDenied increments quota rejections.
func (m *Metrics) RecordAdmissionDenied(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.admissionsDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPrediction increments served spending predictions.
func (m *Metrics) RecordPrediction(ctx context.Context, confidence string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("confidence", strings.TrimSpace(confidence)))
	m.predictions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSegmentRows adds the number of rows bucketed in one batch.
func (m *Metrics) RecordSegmentRows(ctx context.Context, rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.segmentRows.Add(ctx, int64(rows))
}

// RecordRecommendation increments recommendations by answering source.
func (m *Metrics) RecordRecommendation(ctx context.Context, source string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("source", strings.TrimSpace(source)))
	m.recommendations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFlagWrite increments feature flag mutations.
func (m *Metrics) RecordFlagWrite(ctx context.Context, flag string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("flag", strings.TrimSpace(flag)))
	m.flagWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":   {},
	"confidence": {},
	"source":     {},
	"flag":       {},
	"reason":     {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
