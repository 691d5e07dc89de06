package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is read-only reference data here, owned by the catalog subsystem.
type Product struct {
	ID    uuid.UUID       `gorm:"primaryKey"                       json:"id"`
	Name  string          `gorm:"not null"                         json:"name"`
	Price decimal.Decimal `gorm:"type:numeric;not null"            json:"price"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string {
	return "products"
}

// CartItem is one line of a user's cart. PaymentID == nil means the row is
// still in the active cart; a non-nil PaymentID closes the row into the
// payment it was checked out with. At most one open row may exist per
// (user, product), enforced by a partial unique index.
type CartItem struct {
	ID        uuid.UUID  `gorm:"primaryKey"                                                            json:"id"`
	UserID    uuid.UUID  `gorm:"uniqueIndex:idx_open_user_product,where:payment_id IS NULL;not null"   json:"user_id"`
	ProductID uuid.UUID  `gorm:"uniqueIndex:idx_open_user_product,where:payment_id IS NULL;not null"   json:"product_id"`
	Quantity  uint       `gorm:"default:1;check:quantity > 0"                                          json:"quantity"`
	PaymentID *uuid.UUID `gorm:"index"                                                                 json:"payment_id"`
	CreatedAt time.Time  `json:"created_at"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Payment is immutable once written. Amounts are trusted from the caller.
type Payment struct {
	ID            uuid.UUID       `gorm:"primaryKey"            json:"id"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric;not null" json:"total_price"`
	PaymentMethod string          `gorm:"not null"              json:"payment_method"`
	CashAmount    decimal.Decimal `gorm:"type:numeric"          json:"cash_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Payment) TableName() string {
	return "payments"
}
