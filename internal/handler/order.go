package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront-go/storefront/internal/model"
	"github.com/storefront-go/storefront/internal/repository"
)

// OrderHandler serves the seller-facing fulfilment endpoints.
type OrderHandler struct {
	Orders *repository.OrderRepo
}

func NewOrderHandler(orders *repository.OrderRepo) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

type orderStatusReq struct {
	Status string `json:"status"`
}

// Pending lists orders awaiting fulfilment.
func (h *OrderHandler) Pending(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	orders, err := h.Orders.ListPending(ctx)
	if err != nil {
		log.Printf("orders: pending query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Details returns an order with its line items.
func (h *OrderHandler) Details(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	order, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		log.Printf("orders: get failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus advances an order to a new fulfilment state.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req orderStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status, ok := model.ParseOrderStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Orders.UpdateStatus(ctx, id, status); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		log.Printf("orders: update status failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}
