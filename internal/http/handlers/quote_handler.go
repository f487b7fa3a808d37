// README: Quote and price-catalog handlers (public, nothing persisted).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carebridge/internal/modules/pricing"
	"carebridge/internal/types"
)

type QuoteHandler struct {
	pricing *pricing.Service
}

func NewQuoteHandler(svc *pricing.Service) *QuoteHandler {
	return &QuoteHandler{pricing: svc}
}

type flatQuoteReq struct {
	ServiceCode string  `json:"serviceCode"`
	BasePrice   float64 `json:"basePrice"`
	City        string  `json:"city"`
	Address     string  `json:"address"`
	pricing.AddOns
}

func (r flatQuoteReq) toRequest() pricing.FlatQuoteRequest {
	return pricing.FlatQuoteRequest{
		ServiceCode: r.ServiceCode,
		BasePrice:   r.BasePrice,
		City:        r.City,
		Address:     r.Address,
		AddOns:      r.AddOns,
	}
}

type ambulanceQuoteReq struct {
	AmbulanceType string       `json:"ambulanceType"`
	DistanceKm    *float64     `json:"distanceKm"`
	Pickup        *types.Point `json:"pickup"`
	Drop          *types.Point `json:"drop"`
	City          string       `json:"city"`
	Address       string       `json:"address"`
	pricing.AddOns
}

func (h *QuoteHandler) Nursing(c *gin.Context) {
	var req flatQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.pricing.QuoteNursing(c.Request.Context(), req.toRequest())
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *QuoteHandler) Physiotherapy(c *gin.Context) {
	var req flatQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.pricing.QuotePhysiotherapy(c.Request.Context(), req.toRequest())
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *QuoteHandler) Ambulance(c *gin.Context) {
	var req ambulanceQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := h.pricing.QuoteAmbulance(c.Request.Context(), pricing.AmbulanceQuoteRequest{
		AmbulanceType: req.AmbulanceType,
		DistanceKm:    req.DistanceKm,
		Pickup:        req.Pickup,
		Drop:          req.Drop,
		City:          req.City,
		Address:       req.Address,
		AddOns:        req.AddOns,
	})
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *QuoteHandler) NursingPrices(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"services": pricing.NursingCatalog()})
}

func (h *QuoteHandler) PhysiotherapyPrices(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"services": pricing.PhysiotherapyCatalog()})
}

func (h *QuoteHandler) AmbulancePrices(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"services": pricing.AmbulanceCatalog()})
}
