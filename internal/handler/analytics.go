package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/storefront-go/storefront/internal/repository"
)

// AnalyticsHandler serves the admin dashboard aggregates.
type AnalyticsHandler struct {
	Users    *repository.UserRepo
	Products *repository.ProductRepo
	Orders   *repository.OrderRepo
}

func NewAnalyticsHandler(users *repository.UserRepo, products *repository.ProductRepo, orders *repository.OrderRepo) *AnalyticsHandler {
	return &AnalyticsHandler{Users: users, Products: products, Orders: orders}
}

// Get returns catalog/user/sales totals plus per-day sales for the
// trailing seven days.
func (h *AnalyticsHandler) Get(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	users, err := h.Users.Count(ctx)
	if err != nil {
		log.Printf("analytics: user count failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	products, err := h.Products.Count(ctx)
	if err != nil {
		log.Printf("analytics: product count failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	sales, revenue, err := h.Orders.Totals(ctx)
	if err != nil {
		log.Printf("analytics: totals failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	end := time.Now().UTC()
	start := end.Add(-7 * 24 * time.Hour)
	daily, err := h.Orders.DailySales(ctx, start, end)
	if err != nil {
		log.Printf("analytics: daily sales failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"analytics": echo.Map{
			"users":          users,
			"products":       products,
			"total_sales":    sales,
			"total_revenue_cents": revenue,
		},
		"daily_sales": daily,
	})
}
