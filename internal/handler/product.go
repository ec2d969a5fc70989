package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/storefront-go/storefront/internal/model"
	"github.com/storefront-go/storefront/internal/repository"
)

// featuredCacheKey holds the JSON-encoded featured product list in Redis.
// It is invalidated whenever an admin toggles a featured flag.
const featuredCacheKey = "featured_products"

const featuredCacheTTL = 10 * time.Minute

// ProductHandler serves catalog endpoints.  RDB may be nil, in which case
// the featured list is always read from the database.
type ProductHandler struct {
	Products *repository.ProductRepo
	RDB      *redis.Client
}

func NewProductHandler(products *repository.ProductRepo, rdb *redis.Client) *ProductHandler {
	return &ProductHandler{Products: products, RDB: rdb}
}

type productReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  uint64 `json:"price_cents"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	IsFeatured  bool   `json:"is_featured"`
}

// List returns the full catalog (admin only).
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	products, err := h.Products.List(ctx)
	if err != nil {
		log.Printf("products: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Featured returns the featured carousel, served from Redis when the
// cached copy is fresh.
func (h *ProductHandler) Featured(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	if h.RDB != nil {
		if raw, err := h.RDB.Get(ctx, featuredCacheKey).Bytes(); err == nil {
			var products []model.Product
			if json.Unmarshal(raw, &products) == nil {
				return c.JSON(http.StatusOK, echo.Map{"products": products})
			}
		}
	}

	products, err := h.Products.ListFeatured(ctx)
	if err != nil {
		log.Printf("products: featured query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if h.RDB != nil {
		if raw, err := json.Marshal(products); err == nil {
			if err := h.RDB.Set(ctx, featuredCacheKey, raw, featuredCacheTTL).Err(); err != nil {
				log.Printf("products: cache featured failed: %v", err)
			}
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// ByCategory returns products within a single category.
func (h *ProductHandler) ByCategory(c echo.Context) error {
	category := strings.TrimSpace(c.Param("category"))
	ctx, cancel := storeCtx(c)
	defer cancel()
	products, err := h.Products.ListByCategory(ctx, category)
	if err != nil {
		log.Printf("products: category query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Recommendations returns a small random sample of the catalog.
func (h *ProductHandler) Recommendations(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	products, err := h.Products.Random(ctx, 4)
	if err != nil {
		log.Printf("products: recommendations query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Get returns a single product by id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Printf("products: get failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// Create inserts a new product (admin only).
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/price required"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	id, err := h.Products.Create(ctx, model.Product{
		Name: req.Name, Description: req.Description, PriceCents: req.PriceCents,
		ImageURL: req.ImageURL, Category: req.Category, IsFeatured: req.IsFeatured,
	})
	if err != nil {
		log.Printf("products: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create product failed"})
	}
	if req.IsFeatured {
		h.invalidateFeatured(ctx)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Update overwrites a product's mutable fields (admin only).
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	err = h.Products.Update(ctx, model.Product{
		ID: id, Name: req.Name, Description: req.Description,
		PriceCents: req.PriceCents, ImageURL: req.ImageURL, Category: req.Category,
	})
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Printf("products: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update product failed"})
	}
	h.invalidateFeatured(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "product updated"})
}

// ToggleFeatured flips the featured flag (admin only) and drops the
// cached featured list.
func (h *ProductHandler) ToggleFeatured(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	featured, err := h.Products.ToggleFeatured(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Printf("products: toggle featured failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle failed"})
	}
	h.invalidateFeatured(ctx)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_featured": featured})
}

// Delete removes a product (admin only).
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	if err := h.Products.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Printf("products: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete product failed"})
	}
	h.invalidateFeatured(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

// Search matches products by name or description.
func (h *ProductHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q required"})
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	products, err := h.Products.Search(ctx, q)
	if err != nil {
		log.Printf("products: search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Filter narrows the catalog by category, price range and sort order.
func (h *ProductHandler) Filter(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	minCents, _ := strconv.ParseUint(c.QueryParam("min_price_cents"), 10, 64)
	maxCents, _ := strconv.ParseUint(c.QueryParam("max_price_cents"), 10, 64)
	sort := c.QueryParam("sort")

	ctx, cancel := storeCtx(c)
	defer cancel()
	products, err := h.Products.Filter(ctx, category, minCents, maxCents, sort)
	if err != nil {
		log.Printf("products: filter failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func (h *ProductHandler) invalidateFeatured(ctx context.Context) {
	if h.RDB == nil {
		return
	}
	if err := h.RDB.Del(ctx, featuredCacheKey).Err(); err != nil {
		log.Printf("products: invalidate featured cache failed: %v", err)
	}
}
