package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/salepoint/cashier/internal/models"
	"github.com/salepoint/cashier/internal/repo"
	"github.com/salepoint/cashier/internal/service"
	"github.com/salepoint/cashier/internal/transport"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	C  *CartHTTP
	P  *PaymentHTTP
	DB *gorm.DB

	UserID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Product{}, &models.CartItem{}, &models.Payment{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	r := &repo.GormRepo{DB: db}
	cartSvc := &service.CartService{Repo: r}
	paySvc := &service.PaymentService{Repo: r}

	return &testEnv{
		T:      t,
		E:      echo.New(),
		C:      &CartHTTP{Svc: cartSvc},
		P:      &PaymentHTTP{Svc: paySvc, CartSvc: cartSvc},
		DB:     db,
		UserID: uuid.New(),
	}
}

// doJSONRequest builds an authed echo context, mirroring what the JWT
// middleware leaves behind.
func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	c.Set("user_id", env.UserID.String())
	return rec, c
}

func (env *testEnv) createProduct(name string, price int64) models.Product {
	env.T.Helper()
	p := models.Product{Name: name, Price: decimal.NewFromInt(price)}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return p
}

func decodeFlash(t *testing.T, rec *httptest.ResponseRecorder) transport.FlashResponse {
	t.Helper()
	var resp transport.FlashResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetCart_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)

	require.NoError(t, env.C.GetCart(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCart_ReturnsViewWithTotals(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("coffee", 10)
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: env.UserID, ProductID: product.ID, Quantity: 2}).Error)

	rec, c := env.doJSONRequest(http.MethodGet, "/cart", nil)
	require.NoError(t, env.C.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var view transport.CartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Items, 1)
	require.Equal(t, "coffee", view.Items[0].ProductName)
	require.True(t, view.TotalPrice.Equal(decimal.NewFromInt(20)), "total = %s", view.TotalPrice)
}

func TestAddToCart_Success(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("coffee", 10)

	rec, c := env.doJSONRequest(http.MethodPost, "/cart", map[string]any{
		"product_id": product.ID,
		"quantity":   3,
	})
	require.NoError(t, env.C.AddToCart(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeFlash(t, rec)
	require.Equal(t, "success", resp.Status)
	require.Equal(t, "Product added to cart successfully!", resp.Message)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/cart", map[string]any{
		"product_id": uuid.New(),
	})
	require.NoError(t, env.C.AddToCart(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeFlash(t, rec)
	require.Equal(t, "error", resp.Status)
	require.Equal(t, "Product barcode not exist!", resp.Message)

	var count int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestIncrementQuantity_Handler(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("coffee", 10)
	row := models.CartItem{UserID: env.UserID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, env.DB.Create(&row).Error)

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/"+row.ID.String()+"/increment", nil)
	c.SetParamNames("id")
	c.SetParamValues(row.ID.String())
	require.NoError(t, env.C.IncrementQuantity(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeFlash(t, rec)
	require.Equal(t, "Quantity updated successfully.", resp.Message)
}

func TestIncrementQuantity_StaleID(t *testing.T) {
	env := newTestEnv(t)

	id := uuid.New()
	rec, c := env.doJSONRequest(http.MethodPost, "/cart/"+id.String()+"/increment", nil)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	require.NoError(t, env.C.IncrementQuantity(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeFlash(t, rec)
	require.Equal(t, "Product not found.", resp.Message)
}

func TestDecrementQuantity_DeletionMessage(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("coffee", 10)
	row := models.CartItem{UserID: env.UserID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, env.DB.Create(&row).Error)

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/"+row.ID.String()+"/decrement", nil)
	c.SetParamNames("id")
	c.SetParamValues(row.ID.String())
	require.NoError(t, env.C.DecrementQuantity(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeFlash(t, rec)
	require.Equal(t, "Product deleted from cart!", resp.Message)
}

func TestRemoveFromCart_Handler(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("coffee", 10)
	row := models.CartItem{UserID: env.UserID, ProductID: product.ID, Quantity: 5}
	require.NoError(t, env.DB.Create(&row).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, "/cart/"+row.ID.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(row.ID.String())
	require.NoError(t, env.C.RemoveFromCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeFlash(t, rec)
	require.Equal(t, "Product deleted from cart successfully!", resp.Message)
}

func TestRemoveFromCart_StaleID(t *testing.T) {
	env := newTestEnv(t)

	id := uuid.New()
	rec, c := env.doJSONRequest(http.MethodDelete, "/cart/"+id.String(), nil)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	require.NoError(t, env.C.RemoveFromCart(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeFlash(t, rec)
	require.Equal(t, "Cannot delete product!", resp.Message)
}

func TestClearCart_Handler(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct("coffee", 10)
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: env.UserID, ProductID: product.ID, Quantity: 2}).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, "/cart", nil)
	require.NoError(t, env.C.ClearCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeFlash(t, rec)
	require.Equal(t, "All product deleted from cart successfully!", resp.Message)

	var count int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Count(&count).Error)
	require.Zero(t, count)
}
