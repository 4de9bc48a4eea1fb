package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// KardexLine un movimiento con el saldo acumulado después de aplicarlo.
type KardexLine struct {
	Movement *entity.StockMovement
	Balance  int64
}

// Kardex tarjeta de stock de un producto: movimientos con saldo corrido.
type Kardex struct {
	ProductID    string
	ProductName  string
	CurrentStock int64
	Lines        []KardexLine
	GeneratedAt  time.Time
}

// KardexRenderer genera la representación gráfica (PDF) de la tarjeta.
type KardexRenderer interface {
	RenderKardex(ctx context.Context, k *Kardex) ([]byte, error)
}

// KardexUseCase arma la tarjeta de stock desde el libro de movimientos.
type KardexUseCase struct {
	ledger   *LedgerUseCase
	renderer KardexRenderer
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(ledger *LedgerUseCase, renderer KardexRenderer) *KardexUseCase {
	return &KardexUseCase{ledger: ledger, renderer: renderer}
}

// Build devuelve la tarjeta del producto. El último saldo coincide con el stock materializado.
func (uc *KardexUseCase) Build(ctx context.Context, productID string) (*Kardex, error) {
	stock, err := uc.ledger.GetCurrentStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	movements, err := uc.ledger.GetMovementsForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	k := &Kardex{
		ProductID:    productID,
		ProductName:  stock.ProductName,
		CurrentStock: stock.Quantity,
		Lines:        make([]KardexLine, 0, len(movements)),
		GeneratedAt:  uc.ledger.now(),
	}
	var balance int64
	for _, m := range movements {
		balance += m.SignedQuantity()
		k.Lines = append(k.Lines, KardexLine{Movement: m, Balance: balance})
	}
	return k, nil
}

// RenderPDF arma la tarjeta y la renderiza.
func (uc *KardexUseCase) RenderPDF(ctx context.Context, productID string) ([]byte, error) {
	k, err := uc.Build(ctx, productID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderKardex(ctx, k)
}
