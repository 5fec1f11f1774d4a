package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quangvu-dev/cakeshop/internal/logging"
	"github.com/quangvu-dev/cakeshop/internal/models"
	"github.com/quangvu-dev/cakeshop/internal/service/order"
)

type OrderHandler struct {
	Svc *order.Service
}

func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, order.ErrValidation):
		return errorResponse(c, http.StatusBadRequest, err)
	case errors.Is(err, order.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, err)
	case errors.Is(err, order.ErrConflict):
		return errorResponse(c, http.StatusConflict, err)
	default:
		return errorResponse(c, http.StatusInternalServerError, err)
	}
}

func orderIDParam(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid order id")
	}
	return uint(id), nil
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req struct {
		UserID  uint                  `json:"user_id"`
		Items   []order.LineItemInput `json:"items"`
		Address string                `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return errorResponse(c, http.StatusBadRequest, err)
	}

	created, err := h.Svc.CreateOrder(ctx, req.UserID, req.Items, req.Address)
	if err != nil {
		var lineErr *order.LineItemError
		if errors.As(err, &lineErr) {
			l.Warn("create_order_error", "status", 500, "reason", lineErr.Kind, "product_option_id", lineErr.ProductOptionID)
			return c.JSON(http.StatusInternalServerError, lineErr)
		}
		l.Warn("create_order_error", "error", err)
		return httpError(c, err)
	}

	l.Info("create_order_success", "order_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := orderIDParam(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	detail, err := h.Svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListOrders serves both the admin listing and the per-user listing; a
// userId query parameter selects the latter.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	limit := parseIntDefault(c.QueryParam("limit"), 10)
	page := parseIntDefault(c.QueryParam("page"), 1)

	if raw := c.QueryParam("userId"); raw != "" {
		userID := parseIntDefault(raw, 0)
		result, err := h.Svc.ListOrdersByUser(ctx, uint(userID), limit, page)
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}

	params := order.ListParams{
		Limit:  limit,
		Page:   page,
		Order:  c.QueryParam("order"),
		Status: parseIntDefault(c.QueryParam("status"), -1),
		Method: parseIntDefault(c.QueryParam("method"), -1),
		Paid:   parseIntDefault(c.QueryParam("paid"), -1),
		Search: c.QueryParam("search"),
	}
	result, err := h.Svc.ListOrders(ctx, params)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := orderIDParam(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.Svc.UpdateStatus(ctx, id, req.Status); err != nil {
		l.Warn("update_status_error", "order_id", id, "target", int(req.Status), "error", err)
		return httpError(c, err)
	}

	l.Info("update_status_success", "order_id", id, "target", int(req.Status))
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *OrderHandler) UpdateAddress(c echo.Context) error {
	id, err := orderIDParam(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Address string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.Svc.UpdateAddress(c.Request().Context(), id, req.Address); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := orderIDParam(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	if err := h.Svc.DeleteOrder(c.Request().Context(), id); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *OrderHandler) GetStatus(c echo.Context) error {
	id, err := orderIDParam(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	status, err := h.Svc.GetStatus(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}
