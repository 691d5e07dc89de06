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

type PaymentHTTP struct {
	Svc     *service.PaymentService
	CartSvc *service.CartService
}

func (h *PaymentHTTP) PaymentSummary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.summary")

	userID, err := GetID(c)
	if err != nil {
		l.Error("payment_summary_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, transport.Error("unauthorized"))
	}

	total, err := h.CartSvc.PaymentSummary(ctx, userID)
	if err != nil {
		l.Error("payment_summary_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.Error("internal error"))
	}

	l.Info("payment_summary_success")
	return c.JSON(http.StatusOK, transport.PaymentSummaryResponse{TotalPrice: total})
}

func (h *PaymentHTTP) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.record")

	userID, err := GetID(c)
	if err != nil {
		l.Error("record_payment_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, transport.Error("unauthorized"))
	}

	var req transport.RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("record_payment_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, transport.Error("invalid body"))
	}

	payment, closed, err := h.Svc.RecordPayment(ctx, userID, req)
	if err != nil {
		l.Error("record_payment_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.Error("Payment failed!"))
	}

	l.Info("record_payment_success", "payment_id", payment.ID, "items_closed", closed)
	return c.JSON(http.StatusCreated, transport.Success("Payment success!", payment))
}

func (h *PaymentHTTP) GetPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.get")

	if _, err := GetID(c); err != nil {
		l.Error("get_payment_error", "status", 401, "error", err)
		return c.JSON(http.StatusUnauthorized, transport.Error("unauthorized"))
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_payment_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, transport.Error("id is not a uuid"))
	}

	payment, err := h.Svc.GetPayment(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			l.Warn("get_payment_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, transport.Error("payment not found"))
		}
		l.Error("get_payment_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.Error("internal error"))
	}

	return c.JSON(http.StatusOK, payment)
}
