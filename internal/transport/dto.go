package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  *uint     `json:"quantity"`
}

type RecordPaymentRequest struct {
	TotalPrice    decimal.Decimal `json:"total_price"`
	PaymentMethod string          `json:"payment_method"`
	CashAmount    decimal.Decimal `json:"cash_amount"`
}

// CartLine is one open cart row joined with its product.
type CartLine struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     uint            `json:"quantity"`
	CreatedAt    time.Time       `json:"created_at"`
	Total        decimal.Decimal `json:"total"`
}

type CartView struct {
	Items      []CartLine      `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type PaymentSummaryResponse struct {
	TotalPrice decimal.Decimal `json:"total_price"`
}

// FlashResponse mirrors the redirect-with-flash outcome of the original
// storefront as a JSON envelope.
type FlashResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Success(message string, data any) FlashResponse {
	return FlashResponse{Status: "success", Message: message, Data: data}
}

func Error(message string) FlashResponse {
	return FlashResponse{Status: "error", Message: message}
}
