package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront-go/storefront/internal/repository"
)

// CartHandler serves the authenticated user's shopping cart.
type CartHandler struct {
	Cart     *repository.CartRepo
	Products *repository.ProductRepo
}

func NewCartHandler(cart *repository.CartRepo, products *repository.ProductRepo) *CartHandler {
	return &CartHandler{Cart: cart, Products: products}
}

type addToCartReq struct {
	ProductID uint64 `json:"product_id"`
}
type quantityReq struct {
	Quantity uint32 `json:"quantity"`
}

// Get lists the cart joined with product details.
func (h *CartHandler) Get(c echo.Context) error {
	u, _ := currentUser(c)
	ctx, cancel := storeCtx(c)
	defer cancel()
	items, err := h.Cart.Items(ctx, u.ID)
	if err != nil {
		log.Printf("cart: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Add puts one unit of a product into the cart.
func (h *CartHandler) Add(c echo.Context) error {
	u, _ := currentUser(c)
	var req addToCartReq
	if err := c.Bind(&req); err != nil || req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	if _, err := h.Products.GetByID(ctx, req.ProductID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Printf("cart: product lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Cart.Add(ctx, u.ID, req.ProductID); err != nil {
		log.Printf("cart: add failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add to cart failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "added to cart"})
}

// UpdateQuantity sets the quantity of a cart line; zero removes it.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	u, _ := currentUser(c)
	productID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req quantityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Cart.SetQuantity(ctx, u.ID, productID, req.Quantity); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not in cart"})
		}
		log.Printf("cart: update quantity failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update cart failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "cart updated"})
}

// Remove deletes a product from the cart.
func (h *CartHandler) Remove(c echo.Context) error {
	u, _ := currentUser(c)
	productID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Cart.Remove(ctx, u.ID, productID); err != nil {
		log.Printf("cart: remove failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove from cart failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed from cart"})
}
