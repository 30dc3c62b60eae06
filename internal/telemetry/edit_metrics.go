package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// Edit turn metrics
	editTurnCounter  metric.Int64Counter
	editTurnDuration metric.Float64Histogram

	// Tool invocation metrics
	toolInvocationCounter metric.Int64Counter
)

// InitEditMetrics initializes edit-related metrics
func InitEditMetrics() error {
	meter := otel.Meter("clipforge.edit")

	var err error

	editTurnCounter, err = meter.Int64Counter(
		"edit.turn.count",
		metric.WithDescription("Number of edit turns"),
		metric.WithUnit("{turn}"),
	)
	if err != nil {
		return err
	}

	editTurnDuration, err = meter.Float64Histogram(
		"edit.turn.duration",
		metric.WithDescription("Duration of edit turns"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	toolInvocationCounter, err = meter.Int64Counter(
		"edit.tool.count",
		metric.WithDescription("Number of tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordEditTurn records a completed edit turn
func RecordEditTurn(ctx context.Context, durationMs float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	if editTurnCounter != nil {
		editTurnCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
	if editTurnDuration != nil {
		editTurnDuration.Record(ctx, durationMs,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
}

// RecordToolInvocation records one tool call execution
func RecordToolInvocation(ctx context.Context, tool string, success bool) {
	if toolInvocationCounter == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	toolInvocationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("status", status),
		),
	)
}
