package dto

// ErrorResponse cuerpo de error HTTP. Los campos de stock solo se llenan en INSUFFICIENT_STOCK.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ProductID string `json:"product_id,omitempty"`
	Requested *int64 `json:"requested,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

// DateLayout formato de fechas de día en query params y cuerpos (YYYY-MM-DD).
const DateLayout = "2006-01-02"
