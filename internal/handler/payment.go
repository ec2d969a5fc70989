package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/storefront-go/storefront/internal/model"
	"github.com/storefront-go/storefront/internal/queue"
	"github.com/storefront-go/storefront/internal/repository"
	"github.com/storefront-go/storefront/internal/service"
)

// giftThresholdCents is the order total at which a thank-you coupon is
// minted for the buyer.
const giftThresholdCents = 20000 // $200

// PaymentHandler drives checkout against the external payment provider.
type PaymentHandler struct {
	Provider service.CheckoutProvider
	Products *repository.ProductRepo
	Coupons  *repository.CouponRepo
	Cart     *repository.CartRepo
	Orders   *repository.OrderRepo
}

func NewPaymentHandler(provider service.CheckoutProvider, products *repository.ProductRepo,
	coupons *repository.CouponRepo, cart *repository.CartRepo, orders *repository.OrderRepo) *PaymentHandler {
	return &PaymentHandler{Provider: provider, Products: products, Coupons: coupons, Cart: cart, Orders: orders}
}

type checkoutLine struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}
type createSessionReq struct {
	Products   []checkoutLine `json:"products"`
	CouponCode string         `json:"coupon_code"`
}
type checkoutSuccessReq struct {
	SessionID string `json:"session_id"`
}

// CreateCheckoutSession prices the requested lines, applies the user's
// coupon and opens a checkout session with the provider.
func (h *PaymentHandler) CreateCheckoutSession(c echo.Context) error {
	u, _ := currentUser(c)
	var req createSessionReq
	if err := c.Bind(&req); err != nil || len(req.Products) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "products required"})
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	ids := make([]uint64, 0, len(req.Products))
	qty := make(map[uint64]uint32, len(req.Products))
	for _, line := range req.Products {
		if line.ProductID == 0 || line.Quantity == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid line item"})
		}
		ids = append(ids, line.ProductID)
		qty[line.ProductID] = line.Quantity
	}
	products, err := h.Products.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("payments: load products failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(products) != len(qty) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown product in cart"})
	}

	items := make([]service.CheckoutItem, 0, len(products))
	for _, p := range products {
		items = append(items, service.CheckoutItem{
			ProductID: p.ID, Name: p.Name, Quantity: qty[p.ID], UnitCents: p.PriceCents,
		})
	}

	sess := service.CheckoutSession{UserID: u.ID, Items: items}
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		coupon, err := h.Coupons.Validate(ctx, u.ID, code)
		if err != nil {
			if err == repository.ErrNotFound {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid coupon"})
			}
			log.Printf("payments: coupon lookup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		sess.CouponCode = coupon.Code
		sess.DiscountPct = coupon.DiscountPct
	}

	sess, err = h.Provider.CreateSession(ctx, sess)
	if err != nil {
		log.Printf("payments: create session failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "checkout provider unavailable"})
	}
	return c.JSON(http.StatusOK, sess)
}

// CheckoutSuccess verifies a paid session and records the order.  The
// session_id column is unique, so replaying this call returns the order
// already created for the session instead of minting another one.
func (h *PaymentHandler) CheckoutSuccess(c echo.Context) error {
	u, _ := currentUser(c)
	var req checkoutSuccessReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required"})
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	sess, err := h.Provider.Session(ctx, req.SessionID)
	if err != nil {
		if err == service.ErrSessionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		log.Printf("payments: session lookup failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "checkout provider unavailable"})
	}
	if sess.UserID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if sess.Status != service.SessionPaid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session not paid"})
	}

	if existing, err := h.Orders.GetBySession(ctx, sess.ID); err == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "order already recorded", "order_id": existing.ID})
	} else if err != repository.ErrNotFound {
		log.Printf("payments: order lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	order := model.Order{
		UserID:     u.ID,
		TotalCents: sess.TotalCents,
		Status:     model.StatusPaid,
		SessionID:  sess.ID,
	}
	itemNames := make([]string, 0, len(sess.Items))
	for _, it := range sess.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, UnitCents: it.UnitCents,
		})
		itemNames = append(itemNames, it.Name)
	}
	orderID, err := h.Orders.Create(ctx, order)
	if err != nil {
		log.Printf("payments: record order failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "record order failed"})
	}

	// Post-order bookkeeping is best effort; the order itself is already
	// durable and failures here are only logged.
	if sess.CouponCode != "" {
		if coupon, err := h.Coupons.GetByCode(ctx, u.ID, sess.CouponCode); err == nil {
			if err := h.Coupons.Deactivate(ctx, coupon.ID); err != nil {
				log.Printf("payments: deactivate coupon failed: %v", err)
			}
		}
	}
	if err := h.Cart.Clear(ctx, u.ID); err != nil {
		log.Printf("payments: clear cart failed: %v", err)
	}
	if sess.TotalCents >= giftThresholdCents {
		h.mintGiftCoupon(ctx, u.ID)
	}
	if err := queue.PublishOrderCreated(ctx, queue.OrderCreatedEvent{
		OrderID:    orderID,
		UserID:     u.ID,
		TotalCents: sess.TotalCents,
		Items:      itemNames,
		CouponCode: sess.CouponCode,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("payments: publish order event failed: %v", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "order recorded", "order_id": orderID})
}

// mintGiftCoupon issues a 10% thank-you coupon valid for 30 days.
func (h *PaymentHandler) mintGiftCoupon(ctx context.Context, userID uint64) {
	code := "GIFT" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	_, err := h.Coupons.Create(ctx, model.Coupon{
		Code:        code,
		DiscountPct: 10,
		UserID:      userID,
		ExpiresAt:   time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	if err != nil {
		log.Printf("payments: mint gift coupon failed: %v", err)
	}
}
