package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics.
type Metrics struct {
	meter metric.Meter

	// Tool call metrics
	ToolCallsTotal   metric.Int64Counter
	ToolCallDuration metric.Float64Histogram
	ToolCallsActive  metric.Int64UpDownCounter

	// Composition metrics
	MessagesComposedTotal metric.Int64Counter

	// Delivery metrics
	MessagesSentTotal   metric.Int64Counter
	MessageSendDuration metric.Float64Histogram
	MessageErrorsTotal  metric.Int64Counter

	// Repository metrics
	RepositoryOperationsTotal   metric.Int64Counter
	RepositoryOperationDuration metric.Float64Histogram
}

// NewMetrics creates and registers all application metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	m.ToolCallsTotal, err = meter.Int64Counter(
		"mcp.tool.calls.total",
		metric.WithDescription("Total number of MCP tool calls"),
		metric.WithUnit("{calls}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tool_calls_total: %w", err)
	}

	m.ToolCallDuration, err = meter.Float64Histogram(
		"mcp.tool.call.duration",
		metric.WithDescription("MCP tool call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tool_call_duration: %w", err)
	}

	m.ToolCallsActive, err = meter.Int64UpDownCounter(
		"mcp.tool.calls.active",
		metric.WithDescription("Number of MCP tool calls in flight"),
		metric.WithUnit("{calls}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tool_calls_active: %w", err)
	}

	m.MessagesComposedTotal, err = meter.Int64Counter(
		"messages.composed.total",
		metric.WithDescription("Total number of messages composed"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating messages_composed_total: %w", err)
	}

	m.MessagesSentTotal, err = meter.Int64Counter(
		"messages.sent.total",
		metric.WithDescription("Total number of messages delivered to Slack"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating messages_sent_total: %w", err)
	}

	m.MessageSendDuration, err = meter.Float64Histogram(
		"messages.send.duration",
		metric.WithDescription("Message delivery duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating message_send_duration: %w", err)
	}

	m.MessageErrorsTotal, err = meter.Int64Counter(
		"messages.errors.total",
		metric.WithDescription("Total number of failed message deliveries"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating message_errors_total: %w", err)
	}

	m.RepositoryOperationsTotal, err = meter.Int64Counter(
		"repository.operations.total",
		metric.WithDescription("Total number of repository operations"),
		metric.WithUnit("{operations}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository_operations_total: %w", err)
	}

	m.RepositoryOperationDuration, err = meter.Float64Histogram(
		"repository.operation.duration",
		metric.WithDescription("Repository operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating repository_operation_duration: %w", err)
	}

	return m, nil
}

// RecordToolCall records one completed tool call.
func (m *Metrics) RecordToolCall(ctx context.Context, tool string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("tool", tool),
		attribute.Bool("success", success),
	}

	m.ToolCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ToolCallDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordMessageComposed records one composer invocation.
func (m *Metrics) RecordMessageComposed(ctx context.Context, kind string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.Bool("success", success),
	}

	m.MessagesComposedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordMessageSent records one delivery attempt.
func (m *Metrics) RecordMessageSent(ctx context.Context, kind string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.Bool("success", success),
	}

	m.MessagesSentTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.MessageSendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if !success {
		m.MessageErrorsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordRepositoryOperation records repository operation metrics.
func (m *Metrics) RecordRepositoryOperation(ctx context.Context, operation, entity string, duration time.Duration, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("entity", entity),
		attribute.Bool("success", success),
	}

	m.RepositoryOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.RepositoryOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
