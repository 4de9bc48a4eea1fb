package inventory

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// ledgerMetrics contadores del libro mayor. Con el MeterProvider no-op de otel no cuestan nada.
type ledgerMetrics struct {
	recorded metric.Int64Counter
	rejected metric.Int64Counter
	retries  metric.Int64Counter
}

func newLedgerMetrics(meter metric.Meter) ledgerMetrics {
	var m ledgerMetrics
	// Los errores de creación solo ocurren con nombres inválidos; en ese caso queda el no-op.
	m.recorded, _ = meter.Int64Counter("ledger.movements.recorded",
		metric.WithDescription("Movimientos aceptados"), metric.WithUnit("{movement}"))
	m.rejected, _ = meter.Int64Counter("ledger.movements.rejected",
		metric.WithDescription("Operaciones rechazadas por validación, stock o concurrencia"), metric.WithUnit("{operation}"))
	m.retries, _ = meter.Int64Counter("ledger.serialization.retries",
		metric.WithDescription("Reintentos por conflicto de serialización"), metric.WithUnit("{retry}"))
	return m
}

func (m ledgerMetrics) movementRecorded(ctx context.Context, kind string) {
	if m.recorded == nil {
		return
	}
	m.recorded.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m ledgerMetrics) operationRejected(ctx context.Context, err error) {
	if m.rejected == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectReason(err))))
}

func (m ledgerMetrics) retried(ctx context.Context) {
	if m.retries == nil {
		return
	}
	m.retries.Add(ctx, 1)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	}
	return "internal"
}
