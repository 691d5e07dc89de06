package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/salepoint/cashier/internal/events"
	"github.com/salepoint/cashier/internal/models"
	"github.com/salepoint/cashier/internal/repo"
	"github.com/salepoint/cashier/internal/transport"
)

func newTestPaymentService(t *testing.T) (*PaymentService, *CartService, *gorm.DB, *fakePublisher) {
	db := newTestDB(t)
	pub := &fakePublisher{}
	r := &repo.GormRepo{DB: db}
	return &PaymentService{Repo: r, Events: pub}, &CartService{Repo: r, Events: pub}, db, pub
}

func TestRecordPayment_ClosesOpenRows(t *testing.T) {
	paySvc, cartSvc, db, pub := newTestPaymentService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := createProduct(t, db, "espresso", 3)

	// add 3, then a repeat add bumps to 4 regardless of any requested quantity
	_, err := cartSvc.AddToCart(ctx, userID, product.ID, uintPtr(3))
	require.NoError(t, err)
	item, err := cartSvc.AddToCart(ctx, userID, product.ID, nil)
	require.NoError(t, err)
	require.Equal(t, uint(4), item.Quantity)

	payment, closed, err := paySvc.RecordPayment(ctx, userID, transport.RecordPaymentRequest{
		TotalPrice:    decimal.NewFromInt(12),
		PaymentMethod: "cash",
		CashAmount:    decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, payment.ID)
	assert.Equal(t, int64(1), closed)

	var rows []models.CartItem
	require.NoError(t, db.Where("user_id = ?", userID).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].PaymentID)
	assert.Equal(t, payment.ID, *rows[0].PaymentID)

	// the cart rows are closed, not deleted, and the cart reads back empty
	view, err := cartSvc.ListCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	require.NotEmpty(t, pub.published)
	last := pub.published[len(pub.published)-1]
	assert.Equal(t, events.TopicPayment, last.Topic)
	assert.Equal(t, "payment_recorded", pub.lastType())
}

func TestRecordPayment_DoesNotTouchClosedRows(t *testing.T) {
	paySvc, _, db, _ := newTestPaymentService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := createProduct(t, db, "espresso", 3)

	oldPayment := models.Payment{TotalPrice: decimal.NewFromInt(9), PaymentMethod: "cash", CashAmount: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&oldPayment).Error)
	closedRow := models.CartItem{UserID: userID, ProductID: product.ID, Quantity: 3, PaymentID: &oldPayment.ID}
	require.NoError(t, db.Create(&closedRow).Error)
	openRow := models.CartItem{UserID: userID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, db.Create(&openRow).Error)

	payment, closed, err := paySvc.RecordPayment(ctx, userID, transport.RecordPaymentRequest{
		TotalPrice:    decimal.NewFromInt(3),
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	var kept models.CartItem
	require.NoError(t, db.First(&kept, "id = ?", closedRow.ID).Error)
	require.NotNil(t, kept.PaymentID)
	assert.Equal(t, oldPayment.ID, *kept.PaymentID)

	var stamped models.CartItem
	require.NoError(t, db.First(&stamped, "id = ?", openRow.ID).Error)
	require.NotNil(t, stamped.PaymentID)
	assert.Equal(t, payment.ID, *stamped.PaymentID)
}

func TestRecordPayment_EmptyCartStillRecords(t *testing.T) {
	paySvc, _, db, _ := newTestPaymentService(t)
	ctx := context.Background()

	payment, closed, err := paySvc.RecordPayment(ctx, uuid.New(), transport.RecordPaymentRequest{
		TotalPrice:    decimal.Zero,
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), closed)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("id = ?", payment.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetPayment(t *testing.T) {
	paySvc, _, db, _ := newTestPaymentService(t)
	ctx := context.Background()

	created := models.Payment{TotalPrice: decimal.NewFromInt(42), PaymentMethod: "cash", CashAmount: decimal.NewFromInt(50)}
	require.NoError(t, db.Create(&created).Error)

	payment, err := paySvc.GetPayment(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, payment.ID)
	assert.Equal(t, "cash", payment.PaymentMethod)
	assert.True(t, payment.TotalPrice.Equal(decimal.NewFromInt(42)))
}

func TestGetPayment_NotFound(t *testing.T) {
	paySvc, _, _, _ := newTestPaymentService(t)

	_, err := paySvc.GetPayment(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}
