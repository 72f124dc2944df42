package daily

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/fyrsmithlabs/stepwrap/internal/healthexport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/fyrsmithlabs/stepwrap/internal/daily"

// Source yields records until io.EOF.
type Source interface {
	Next() (healthexport.Record, error)
}

// Observer is told how many records have been folded so far.
type Observer interface {
	Observe(processed int)
}

// Aggregator folds a Source into a Table.
type Aggregator struct {
	tracer  trace.Tracer
	records metric.Int64Counter
	days    metric.Int64Histogram
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*aggregatorOptions)

type aggregatorOptions struct {
	tp trace.TracerProvider
	mp metric.MeterProvider
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) AggregatorOption {
	return func(o *aggregatorOptions) { o.tp = tp }
}

// WithMeterProvider sets the meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) AggregatorOption {
	return func(o *aggregatorOptions) { o.mp = mp }
}

// NewAggregator creates an Aggregator.
func NewAggregator(opts ...AggregatorOption) (*Aggregator, error) {
	o := aggregatorOptions{
		tp: otel.GetTracerProvider(),
		mp: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.mp.Meter(instrumentationName)
	records, err := meter.Int64Counter("stepwrap.aggregate.records",
		metric.WithDescription("Step records folded into the daily table"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}
	days, err := meter.Int64Histogram("stepwrap.aggregate.days",
		metric.WithDescription("Distinct calendar days per aggregation"),
		metric.WithUnit("{day}"),
	)
	if err != nil {
		return nil, err
	}

	return &Aggregator{
		tracer:  o.tp.Tracer(instrumentationName),
		records: records,
		days:    days,
	}, nil
}

// Aggregate pulls src to exhaustion. Each record's full value is credited to
// the calendar date of its start, in the start's own offset. A source error
// other than io.EOF, or ctx cancellation, aborts with that error.
func (a *Aggregator) Aggregate(ctx context.Context, src Source, obs Observer) (Table, error) {
	ctx, span := a.tracer.Start(ctx, "daily.Aggregate")
	defer span.End()

	totals := make(map[time.Time]int)
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return a.abort(span, err)
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return a.abort(span, err)
		}

		totals[DateOf(rec.Start)] += rec.Value
		processed++
		if obs != nil {
			obs.Observe(processed)
		}
	}

	t := fromTotals(totals)
	a.records.Add(ctx, int64(processed))
	a.days.Record(ctx, int64(t.Len()))
	span.SetAttributes(
		attribute.Int("records", processed),
		attribute.Int("days", t.Len()),
	)
	return t, nil
}

func (a *Aggregator) abort(span trace.Span, err error) (Table, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return Table{}, err
}

// Aggregate folds src with the global providers.
func Aggregate(ctx context.Context, src Source, obs Observer) (Table, error) {
	a, err := NewAggregator()
	if err != nil {
		return Table{}, err
	}
	return a.Aggregate(ctx, src, obs)
}
