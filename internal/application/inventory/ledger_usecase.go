package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	tracerName        = "github.com/jhoicas/stock-ledger/internal/application/inventory"
	defaultMaxRetries = 5
)

// LedgerOptions parámetros opcionales del libro mayor.
type LedgerOptions struct {
	MaxRetries *uint            // reintentos ante conflictos de serialización (nil = 5, 0 = ninguno)
	Logger     *zerolog.Logger  // nil = sin logs
	Clock      func() time.Time // nil = time.Now

	// MeterProvider para los contadores del libro; nil = proveedor global de otel.
	MeterProvider metric.MeterProvider
}

// LedgerUseCase es el único escritor del stock materializado. Cada movimiento se registra
// en una transacción que bloquea la fila de stock del producto (SELECT FOR UPDATE), valida
// que el stock no quede negativo y persiste {movimiento, stock} con Commit/Rollback.
type LedgerUseCase struct {
	txRunner   TxRunner
	catalog    repository.ProductRepository
	movRepo    repository.StockMovementRepository
	stockRepo  repository.StockRepository
	maxRetries uint
	log        zerolog.Logger
	tracer     trace.Tracer
	metrics    ledgerMetrics
	now        func() time.Time
}

// NewLedgerUseCase construye el caso de uso. movRepo y stockRepo se usan solo para lecturas.
func NewLedgerUseCase(
	txRunner TxRunner,
	catalog repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	opts LedgerOptions,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txRunner:   txRunner,
		catalog:    catalog,
		movRepo:    movRepo,
		stockRepo:  stockRepo,
		maxRetries: defaultMaxRetries,
		log:        zerolog.Nop(),
		tracer:     otel.Tracer(tracerName),
		now:        opts.Clock,
	}
	if opts.MaxRetries != nil {
		uc.maxRetries = *opts.MaxRetries
	}
	if opts.Logger != nil {
		uc.log = opts.Logger.With().Str("component", "ledger").Logger()
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	uc.metrics = newLedgerMetrics(mp.Meter(tracerName))
	return uc
}

// MovementInputDTO entrada para registrar un movimiento.
// OccurredAt es opcional; si falta se usa la hora de procesamiento.
type MovementInputDTO struct {
	ProductID  string
	UserID     string
	Kind       entity.MovementKind
	Reason     entity.MovementReason
	Quantity   int64
	UnitPrice  *decimal.Decimal
	Reference  string
	Notes      string
	OccurredAt *time.Time
}

// SaleInputDTO entrada para registrar una venta (salida con precio unitario obligatorio).
type SaleInputDTO struct {
	ProductID string
	UserID    string
	Quantity  int64
	UnitPrice decimal.Decimal
	Reference string
}

// planFunc decide qué movimiento aplicar a partir del stock bloqueado. nil = no hay nada que hacer.
type planFunc func(current *entity.Stock) (*entity.StockMovement, error)

type commitResult struct {
	movement *entity.StockMovement
	stock    *entity.Stock
}

// RecordMovement registra un movimiento y actualiza el stock en una sola unidad atómica.
// Errores: ErrInvalidInput, ErrNotFound, *InsufficientStockError (ErrConflict) o ErrConflict
// si se agotan los reintentos de serialización. Ante cualquier error no hay efectos.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, in MovementInputDTO) (*entity.StockMovement, error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.record_movement", trace.WithAttributes(
		attribute.String("product_id", in.ProductID),
		attribute.String("kind", string(in.Kind)),
		attribute.Int64("quantity", in.Quantity),
	))
	defer span.End()

	mov, err := uc.recordMovement(ctx, in)
	uc.finish(ctx, span, "movimiento", in.ProductID, err)
	if err != nil {
		return nil, err
	}
	uc.metrics.movementRecorded(ctx, string(mov.Kind))
	uc.log.Debug().
		Str("product_id", mov.ProductID).
		Str("movement_id", mov.ID).
		Str("kind", string(mov.Kind)).
		Int64("quantity", mov.Quantity).
		Msg("movimiento registrado")
	return mov, nil
}

func (uc *LedgerUseCase) recordMovement(ctx context.Context, in MovementInputDTO) (*entity.StockMovement, error) {
	if in.Reason == "" {
		in.Reason = entity.DefaultReason(in.Kind)
	}
	if in.ProductID == "" || !in.Kind.Valid() || !in.Reason.Valid() || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	name, err := uc.productName(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	res, err := uc.commit(ctx, in.ProductID, name, func(*entity.Stock) (*entity.StockMovement, error) {
		mov := &entity.StockMovement{
			ProductID: in.ProductID,
			Kind:      in.Kind,
			Reason:    in.Reason,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			Reference: in.Reference,
			Notes:     in.Notes,
			CreatedBy: in.UserID,
		}
		if in.OccurredAt != nil {
			mov.OccurredAt = in.OccurredAt.UTC().Truncate(time.Microsecond)
		}
		return mov, nil
	})
	if err != nil {
		return nil, err
	}
	return res.movement, nil
}

// RecordSale registra una venta: salida con razón SALE y precio unitario positivo.
func (uc *LedgerUseCase) RecordSale(ctx context.Context, in SaleInputDTO) (*entity.StockMovement, error) {
	if !in.UnitPrice.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	price := in.UnitPrice
	return uc.RecordMovement(ctx, MovementInputDTO{
		ProductID: in.ProductID,
		UserID:    in.UserID,
		Kind:      entity.MovementOut,
		Reason:    entity.ReasonSale,
		Quantity:  in.Quantity,
		UnitPrice: &price,
		Reference: in.Reference,
	})
}

// SetStock lleva el stock del producto a target registrando un movimiento ADJUSTMENT por la
// diferencia, de modo que el stock siga siendo la suma de los movimientos.
func (uc *LedgerUseCase) SetStock(ctx context.Context, productID string, target int64, userID string) (*entity.Stock, error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.set_stock", trace.WithAttributes(
		attribute.String("product_id", productID),
		attribute.Int64("target", target),
	))
	defer span.End()

	stock, err := uc.setStock(ctx, productID, target, userID)
	uc.finish(ctx, span, "ajuste", productID, err)
	return stock, err
}

func (uc *LedgerUseCase) setStock(ctx context.Context, productID string, target int64, userID string) (*entity.Stock, error) {
	if productID == "" || target < 0 {
		return nil, domain.ErrInvalidInput
	}
	name, err := uc.productName(ctx, productID)
	if err != nil {
		return nil, err
	}
	res, err := uc.commit(ctx, productID, name, func(current *entity.Stock) (*entity.StockMovement, error) {
		kind, qty, ok := inventory.AdjustmentFor(current.Quantity, target)
		if !ok {
			return nil, nil
		}
		return &entity.StockMovement{
			ProductID: productID,
			Kind:      kind,
			Reason:    entity.ReasonAdjustment,
			Quantity:  qty,
			Notes:     fmt.Sprintf("ajuste de %d a %d", current.Quantity, target),
			CreatedBy: userID,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if res.movement != nil {
		uc.metrics.movementRecorded(ctx, string(res.movement.Kind))
	}
	res.stock.ProductName = name
	return res.stock, nil
}

// GetCurrentStock devuelve el stock del producto. Si el producto existe pero nunca tuvo
// movimientos devuelve un stock implícito en cero (Implicit = true), nunca ErrNotFound.
func (uc *LedgerUseCase) GetCurrentStock(ctx context.Context, productID string) (*entity.Stock, error) {
	name, err := uc.productName(ctx, productID)
	if err != nil {
		return nil, err
	}
	stock, err := uc.stockRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return &entity.Stock{ProductID: productID, ProductName: name, Implicit: true}, nil
	}
	stock.ProductName = name
	return stock, nil
}

// GetMovementsForProduct devuelve los movimientos del producto en orden ascendente de fecha
// (empates por orden de inserción).
func (uc *LedgerUseCase) GetMovementsForProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	if _, err := uc.productName(ctx, productID); err != nil {
		return nil, err
	}
	list, err := uc.movRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.StockMovement{}
	}
	return list, nil
}

// commit ejecuta el ciclo leer-calcular-escribir bajo el bloqueo de la fila del producto.
// Solo los conflictos de serialización se reintentan; el resto de errores son permanentes.
func (uc *LedgerUseCase) commit(ctx context.Context, productID, productName string, plan planFunc) (commitResult, error) {
	op := func() (commitResult, error) {
		var res commitResult
		err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, stockRepo repository.StockRepository) error {
			stock, err := stockRepo.GetForUpdate(ctx, productID)
			if err != nil {
				return err
			}
			mov, err := plan(stock)
			if err != nil {
				return err
			}
			if mov == nil {
				res.stock = stock
				return nil
			}
			if err := uc.apply(stock, mov, productName); err != nil {
				return err
			}
			if err := stockRepo.Upsert(ctx, stock); err != nil {
				return err
			}
			if err := movRepo.Append(ctx, mov); err != nil {
				return err
			}
			res = commitResult{movement: mov, stock: stock}
			return nil
		})
		if err != nil && !errors.Is(err, domain.ErrSerialization) {
			return commitResult{}, backoff.Permanent(err)
		}
		return res, err
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(newRetryBackOff()),
		backoff.WithMaxTries(uc.maxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			uc.metrics.retried(ctx)
			uc.log.Warn().Err(err).Str("product_id", productID).Dur("wait", wait).Msg("conflicto de serialización, reintentando")
		}),
	)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		if errors.Is(err, domain.ErrSerialization) {
			return commitResult{}, fmt.Errorf("%w: reintentos agotados: %w", domain.ErrConflict, err)
		}
		return commitResult{}, err
	}
	return res, nil
}

// apply fija la fecha del movimiento y calcula el nuevo stock. No persiste nada.
func (uc *LedgerUseCase) apply(stock *entity.Stock, mov *entity.StockMovement, productName string) error {
	now := uc.now().UTC().Truncate(time.Microsecond)
	switch {
	case mov.OccurredAt.IsZero():
		// Reloj de proceso: nunca por detrás del último movimiento aplicado.
		mov.OccurredAt = now
		if mov.OccurredAt.Before(stock.LastUpdated) {
			mov.OccurredAt = stock.LastUpdated
		}
	case mov.OccurredAt.Before(stock.LastUpdated):
		return fmt.Errorf("%w: fecha anterior al último movimiento del producto", domain.ErrInvalidInput)
	}

	next, err := inventory.ApplyMovement(stock.Quantity, mov.Kind, mov.Quantity)
	if errors.Is(err, domain.ErrInsufficientStock) {
		return &domain.InsufficientStockError{
			ProductID:   stock.ProductID,
			ProductName: productName,
			Requested:   mov.Quantity,
			Available:   stock.Quantity,
		}
	}
	if err != nil {
		return err
	}

	stock.ProductID = mov.ProductID
	stock.ProductName = productName
	stock.Quantity = next
	stock.LastUpdated = mov.OccurredAt
	stock.Implicit = false
	mov.CreatedAt = now
	return nil
}

func (uc *LedgerUseCase) productName(ctx context.Context, productID string) (string, error) {
	if productID == "" {
		return "", domain.ErrInvalidInput
	}
	return uc.catalog.NameOf(ctx, productID)
}

// finish registra el resultado en el span y en el log según el tipo de error.
func (uc *LedgerUseCase) finish(ctx context.Context, span trace.Span, op, productID string, err error) {
	if err == nil {
		return
	}
	uc.metrics.operationRejected(ctx, err)
	span.RecordError(err)
	if isBusinessError(err) {
		span.SetAttributes(attribute.Bool("ledger.rejected", true))
		uc.log.Info().Err(err).Str("product_id", productID).Str("op", op).Msg("operación rechazada")
		return
	}
	span.SetStatus(codes.Error, err.Error())
	uc.log.Error().Err(err).Str("product_id", productID).Str("op", op).Msg("error interno del libro mayor")
}

func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict)
}

func newRetryBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	return b
}
