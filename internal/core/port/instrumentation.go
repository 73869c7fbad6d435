package port

import "context"

// Instrumentation records application-level metrics.
type Instrumentation interface {
	RecordDDLDuration(ctx context.Context, ms float64)
	IncrementDDLCount(ctx context.Context)
	IncrementDDLErrors(ctx context.Context)
	RecordToolDuration(ctx context.Context, ms float64)
}

// NoopInstrumentation discards all metrics.
type NoopInstrumentation struct{}

func (NoopInstrumentation) RecordDDLDuration(context.Context, float64)  {}
func (NoopInstrumentation) IncrementDDLCount(context.Context)           {}
func (NoopInstrumentation) IncrementDDLErrors(context.Context)          {}
func (NoopInstrumentation) RecordToolDuration(context.Context, float64) {}
