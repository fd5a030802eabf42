// internal/common/observability/observability.go
package observability

import (
	"context"
	"errors"
	"time"

	"phalanx-matcher/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects the tracing backend. An empty JaegerEndpoint keeps spans
// in-process only.
type Config struct {
	ServiceName    string
	JaegerEndpoint string
	SampleRatio    float64
}

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	matchCounter  otelmetric.Int64Counter
	matchDuration otelmetric.Float64Histogram
}

func New(cfg Config, log logger.Logger) *Observability {
	o := &Observability{tracer: noop.NewTracerProvider().Tracer(cfg.ServiceName)}
	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	exporter, err := prometheus.New()
	if err != nil {
		log.Error("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
		otel.SetMeterProvider(o.meterProvider)
		o.initInstruments(o.meterProvider.Meter(cfg.ServiceName))
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if cfg.JaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
		if err != nil {
			log.Error("Failed to create Jaeger exporter", map[string]interface{}{"error": err})
		} else {
			opts = append(opts, sdktrace.WithBatcher(exp))
		}
	}
	o.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(cfg.ServiceName)

	return o
}

func (o *Observability) initInstruments(meter otelmetric.Meter) {
	o.jobCounter, _ = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	o.matchCounter, _ = meter.Int64Counter(
		"matches.ranked",
		otelmetric.WithDescription("Ranked matches returned per request"),
	)
	o.matchDuration, _ = meter.Float64Histogram(
		"matches.duration",
		otelmetric.WithDescription("End-to-end match request duration"),
		otelmetric.WithUnit("ms"),
	)
}

// StartSpan opens a span under whatever span ctx already carries.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}

func (o *Observability) RecordJobProcessed(ctx context.Context, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

// RecordMatchRequest tracks one match request: mode is "hybrid" or "rules".
func (o *Observability) RecordMatchRequest(ctx context.Context, mode string, returned int, duration time.Duration) {
	attrs := otelmetric.WithAttributes(attribute.String("mode", mode))
	if o.matchCounter != nil {
		o.matchCounter.Add(ctx, int64(returned), attrs)
	}
	if o.matchDuration != nil {
		o.matchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
