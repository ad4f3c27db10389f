// README: API gateway; registers HTTP routes and delegates to module
// services.
package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pronto/internal/content"
	"pronto/internal/http/handlers"
	"pronto/internal/http/middleware"
	"pronto/internal/infra"
	"pronto/internal/maps"
	"pronto/internal/modules/cart"
	"pronto/internal/modules/checkout"
	"pronto/internal/modules/order"
	"pronto/internal/modules/pricing"
	"pronto/internal/modules/tracking"
)

type ServerDeps struct {
	Carts    *cart.Service
	Checkout *checkout.Service
	Orders   *order.Store
	Pricing  *pricing.Service
	Tracking *tracking.Watcher
	Content  *content.Client
	Places   *maps.PlacesService
	Verifier infra.TokenVerifier
}

// NewRouter builds the full route table. Browsing, cart, and the early
// checkout steps work anonymously; order submission and anything that
// reads a customer's order history require a verified identity.
func NewRouter(deps ServerDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logging())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		AllowCredentials: false,
	}))
	r.Use(middleware.Session())

	cartHandler := handlers.NewCartHandler(deps.Carts)
	checkoutHandler := handlers.NewCheckoutHandler(deps.Checkout)
	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.Content)
	trackingHandler := handlers.NewTrackingHandler(deps.Orders, deps.Tracking)
	quoteHandler := handlers.NewQuoteHandler(deps.Pricing, deps.Places)

	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(deps.Verifier))
	{
		api.GET("/cart", cartHandler.Get)
		api.POST("/cart/items", cartHandler.AddItem)
		api.POST("/cart/replace", cartHandler.ReplaceWith)
		api.PATCH("/cart/items/:id", cartHandler.UpdateQuantity)
		api.DELETE("/cart/items/:id", cartHandler.RemoveItem)
		api.DELETE("/cart", cartHandler.Clear)

		api.POST("/checkout", checkoutHandler.Begin)
		api.GET("/checkout", checkoutHandler.Get)
		api.PUT("/checkout/location", checkoutHandler.SetLocation)
		api.PUT("/checkout/receiver", checkoutHandler.SetReceiver)
		api.POST("/checkout/refresh", checkoutHandler.Refresh)
		api.POST("/checkout/submit", checkoutHandler.Submit)

		api.POST("/quote", quoteHandler.Preview)
		api.GET("/places", quoteHandler.SearchPlaces)
	}

	authed := r.Group("/api")
	authed.Use(middleware.Auth(deps.Verifier))
	{
		authed.GET("/orders", orderHandler.List)
		authed.GET("/orders/:id", orderHandler.Get)
		authed.POST("/orders/:id/payment-proof", orderHandler.UploadPaymentProof)
		authed.GET("/orders/:id/events", trackingHandler.Stream)
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
