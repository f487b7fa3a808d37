// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carebridge/internal/http/handlers"
	"carebridge/internal/http/middleware"
	"carebridge/internal/infra"
	"carebridge/internal/modules/order"
	"carebridge/internal/modules/pricing"
)

type RouterDeps struct {
	Order    *order.Service
	Pricing  *pricing.Service
	Verifier infra.TokenVerifier
	Logger   *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(deps.Logger),
		middleware.Metrics(),
		middleware.Recovery(deps.Logger),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	quoteHandler := handlers.NewQuoteHandler(deps.Pricing)
	r.GET("/nursing-prices", quoteHandler.NursingPrices)
	r.GET("/physiotherapy-prices", quoteHandler.PhysiotherapyPrices)
	r.GET("/ambulance-prices", quoteHandler.AmbulancePrices)
	r.POST("/quotes/nursing", quoteHandler.Nursing)
	r.POST("/quotes/physiotherapy", quoteHandler.Physiotherapy)
	r.POST("/quotes/ambulance", quoteHandler.Ambulance)

	orders := r.Group("/service-orders", middleware.Auth(deps.Verifier))

	orderHandler := handlers.NewOrderHandler(deps.Order)
	orders.POST("", orderHandler.Create)
	orders.GET("/:id", orderHandler.Get)

	partnerHandler := handlers.NewPartnerHandler(deps.Order)
	orders.GET("", partnerHandler.List)
	orders.POST("/:id/accept", partnerHandler.Accept)
	orders.POST("/:id/decline", partnerHandler.Decline)
	orders.POST("/:id/complete", partnerHandler.Complete)
	orders.POST("/:id/release", partnerHandler.Release)
	orders.POST("/:id/rate-user", partnerHandler.Rate)

	return r
}
