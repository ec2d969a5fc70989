package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework handles routing

	"github.com/storefront-go/storefront/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// which load balancers and monitoring systems use to verify the service
// is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts the account flow endpoints under /api/auth.  The
// whole group sits behind the rate limiter so credential stuffing runs
// into the token bucket before it reaches bcrypt.  Only /profile requires
// an existing session; every other endpoint either creates one or is
// self-checking against the cookies it receives.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authenticated, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/api/auth", rateLimit)
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.POST("/refresh-token", a.Refresh)
	g.GET("/profile", a.Profile, authenticated)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)
	g.POST("/verify-reset-token", a.VerifyResetToken)
	g.GET("/verify-token", a.VerifyToken)
}

// RegisterCatalog mounts the product endpoints under /api/products.
// Browse endpoints (featured, category, recommendations, search, filter)
// are public and cacheable; mutations require the admin gate.
func RegisterCatalog(e *echo.Echo, p *handler.ProductHandler, authenticated, adminOnly, cache echo.MiddlewareFunc) {
	g := e.Group("/api/products")

	g.GET("/featured", p.Featured, cache)
	g.GET("/category/:category", p.ByCategory, cache)
	g.GET("/recommendations", p.Recommendations, cache)
	g.GET("/search", p.Search, cache)
	g.GET("/filter", p.Filter, cache)

	g.GET("", p.List, authenticated, adminOnly)
	g.POST("", p.Create, authenticated, adminOnly)
	g.PATCH("/:id", p.ToggleFeatured, authenticated, adminOnly)
	g.PUT("/:id", p.Update, authenticated, adminOnly)
	g.DELETE("/:id", p.Delete, authenticated, adminOnly)

	g.GET("/:id", p.Get, authenticated)
}

// RegisterShop mounts cart, coupon and payment endpoints; all of them act
// on the authenticated user's own data.
func RegisterShop(e *echo.Echo, cart *handler.CartHandler, coupons *handler.CouponHandler,
	payments *handler.PaymentHandler, authenticated echo.MiddlewareFunc) {
	cg := e.Group("/api/cart", authenticated)
	cg.GET("", cart.Get)
	cg.POST("", cart.Add)
	cg.DELETE("/:id", cart.Remove)
	cg.PUT("/:id", cart.UpdateQuantity)

	kg := e.Group("/api/coupons", authenticated)
	kg.GET("", coupons.Get)
	kg.POST("/validate", coupons.Validate)

	pg := e.Group("/api/payments", authenticated)
	pg.POST("/create-checkout-session", payments.CreateCheckoutSession)
	pg.POST("/checkout-success", payments.CheckoutSuccess)
}

// RegisterBackoffice mounts the seller and admin surfaces: order
// fulfilment (seller gate), analytics and account administration (admin
// gate), plus the user's own profile update.
func RegisterBackoffice(e *echo.Echo, orders *handler.OrderHandler, analytics *handler.AnalyticsHandler,
	users *handler.UserAdminHandler, authenticated, sellerOnly, adminOnly echo.MiddlewareFunc) {
	og := e.Group("/api/order", authenticated, sellerOnly)
	og.GET("/pending", orders.Pending)
	og.GET("/:id", orders.Details)
	og.PUT("/:id/status", orders.UpdateStatus)

	e.GET("/api/analytics", analytics.Get, authenticated, adminOnly)

	ug := e.Group("/api/users")
	ug.PUT("/profile", users.UpdateProfile, authenticated)
	ug.GET("", users.List, authenticated, adminOnly)
	ug.PUT("/:id", users.Update, authenticated, adminOnly)
	ug.DELETE("/:id", users.Delete, authenticated, adminOnly)
}
