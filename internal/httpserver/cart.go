package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/salepoint/cashier/internal/service"
	"github.com/salepoint/cashier/internal/transport"
	"github.com/salepoint/cashier/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

// GetID resolves the authenticated user once per request; it is the only
// place the session identity is read from.
func GetID(c echo.Context) (uuid.UUID, error) {
	v := c.Get("user_id")
	s, ok := v.(string)
	if !ok || s == "" {
		return uuid.Nil, errors.New("unauthorized")
	}

	userID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.New("unauthorized")
	}

	return userID, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := GetID(c)
	if err != nil {
		l.Error("get_cart_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, transport.Error("unauthorized"))
	}

	view, err := h.Svc.ListCart(ctx, userID)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.Error("internal error"))
	}

	l.Info("get_cart_success", "items", len(view.Items))
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := GetID(c)
	if err != nil {
		l.Error("add_to_cart_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, transport.Error("unauthorized"))
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, transport.Error("invalid body"))
	}

	item, err := h.Svc.AddToCart(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("add_to_cart_error", "status", 400, "error", err)
			return c.JSON(http.StatusBadRequest, transport.Error("product_id required"))
		case errors.Is(err, service.ErrProductNotFound):
			l.Warn("add_to_cart_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, transport.Error("Product barcode not exist!"))
		default:
			l.Error("add_to_cart_error", "status", 500, "error", err)
			return c.JSON(http.StatusInternalServerError, transport.Error("Failed to add product to cart!"))
		}
	}

	l.Info("add_to_cart_success", "item_id", item.ID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, transport.Success("Product added to cart successfully!", item))
}

func (h *CartHTTP) IncrementQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.increment")

	userID, err := GetID(c)
	if err != nil {
		l.Error("increment_quantity_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, transport.Error("unauthorized"))
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("increment_quantity_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, transport.Error("id is not a uuid"))
	}

	item, err := h.Svc.IncrementQuantity(ctx, id, userID)
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			l.Warn("increment_quantity_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, transport.Error("Product not found."))
		}
		l.Error("increment_quantity_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.Error("Failed to update quantity."))
	}

	l.Info("increment_quantity_success", "item_id", id, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, transport.Success("Quantity updated successfully.", item))
}

func (h *CartHTTP) DecrementQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.decrement")

	userID, err := GetID(c)
	if err != nil {
		l.Error("decrement_quantity_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, transport.Error("unauthorized"))
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("decrement_quantity_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, transport.Error("id is not a uuid"))
	}

	deleted, item, err := h.Svc.DecrementQuantity(ctx, id, userID)
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			l.Warn("decrement_quantity_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, transport.Error("Product not found."))
		}
		l.Error("decrement_quantity_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.Error("Failed to update quantity."))
	}

	if deleted {
		l.Info("decrement_quantity_deleted", "item_id", id)
		return c.JSON(http.StatusOK, transport.Success("Product deleted from cart!", nil))
	}

	l.Info("decrement_quantity_success", "item_id", id, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, transport.Success("Quantity updated successfully.", item))
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := GetID(c)
	if err != nil {
		l.Error("remove_from_cart_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, transport.Error("unauthorized"))
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, transport.Error("id is not a uuid"))
	}

	if err := h.Svc.RemoveFromCart(ctx, id, userID); err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			l.Warn("remove_from_cart_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, transport.Error("Cannot delete product!"))
		}
		l.Error("remove_from_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.Error("Failed to delete product from cart!"))
	}

	l.Info("remove_from_cart_success", "item_id", id)
	return c.JSON(http.StatusOK, transport.Success("Product deleted from cart successfully!", nil))
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := GetID(c)
	if err != nil {
		l.Error("clear_cart_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, transport.Error("unauthorized"))
	}

	if err := h.Svc.ClearCart(ctx, userID); err != nil {
		l.Error("clear_cart_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.Error("Failed to clear cart!"))
	}

	l.Info("clear_cart_success")
	return c.JSON(http.StatusOK, transport.Success("All product deleted from cart successfully!", nil))
}
