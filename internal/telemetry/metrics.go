package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/pgmeta/statext"

// Instruments holds pre-created OTel metric instruments.
type Instruments struct {
	DDLCount     metric.Int64Counter
	DDLDuration  metric.Float64Histogram
	DDLErrors    metric.Int64Counter
	ToolDuration metric.Float64Histogram
}

// NewInstruments creates metric instruments from the global MeterProvider.
// Returns nil-safe instruments: if creation fails, noop instruments are used.
func NewInstruments() *Instruments {
	meter := otel.Meter(meterName)
	return newInstrumentsFromMeter(meter)
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	meter := noop.NewMeterProvider().Meter(meterName)
	return newInstrumentsFromMeter(meter)
}

func newInstrumentsFromMeter(meter metric.Meter) *Instruments {
	// OTel SDK returns noop instruments on error; safe to discard.
	ddlCount, _ := meter.Int64Counter("statext.ddl.count",
		metric.WithDescription("Total number of statistics DDL requests executed"),
	)
	ddlDuration, _ := meter.Float64Histogram("statext.ddl.duration",
		metric.WithDescription("Statistics DDL execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	ddlErrors, _ := meter.Int64Counter("statext.ddl.errors",
		metric.WithDescription("Total number of failed statistics DDL requests"),
	)
	toolDuration, _ := meter.Float64Histogram("statext.tool.duration",
		metric.WithDescription("MCP tool call duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Instruments{
		DDLCount:     ddlCount,
		DDLDuration:  ddlDuration,
		DDLErrors:    ddlErrors,
		ToolDuration: toolDuration,
	}
}

func (i *Instruments) RecordDDLDuration(ctx context.Context, ms float64) {
	i.DDLDuration.Record(ctx, ms)
}

func (i *Instruments) IncrementDDLCount(ctx context.Context) {
	i.DDLCount.Add(ctx, 1)
}

func (i *Instruments) IncrementDDLErrors(ctx context.Context) {
	i.DDLErrors.Add(ctx, 1)
}

func (i *Instruments) RecordToolDuration(ctx context.Context, ms float64) {
	i.ToolDuration.Record(ctx, ms)
}
