// README: Partner handlers for listing, accept, decline, complete, release, rate.
package handlers

import (
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"carebridge/internal/modules/order"
	"carebridge/internal/types"
)

type PartnerHandler struct {
	order *order.Service
}

func NewPartnerHandler(svc *order.Service) *PartnerHandler {
	return &PartnerHandler{order: svc}
}

func (h *PartnerHandler) List(c *gin.Context) {
	orders, err := h.order.ListForPartner(c.Request.Context(), callerID(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": orders})
}

type acceptReq struct {
	ServiceType string `json:"service_type"`
}

func (h *PartnerHandler) Accept(c *gin.Context) {
	var req acceptReq
	if !bindOptionalJSON(c, &req) {
		return
	}
	o, err := h.order.Accept(c.Request.Context(), order.AcceptCommand{
		OrderID:     types.ID(c.Param("id")),
		PartnerID:   callerID(c),
		ServiceType: req.ServiceType,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"order": o})
}

func (h *PartnerHandler) Decline(c *gin.Context) {
	o, err := h.order.Decline(c.Request.Context(), order.DeclineCommand{
		OrderID:   types.ID(c.Param("id")),
		PartnerID: callerID(c),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"order": o})
}

func (h *PartnerHandler) Complete(c *gin.Context) {
	o, err := h.order.Complete(c.Request.Context(), order.CompleteCommand{
		OrderID:   types.ID(c.Param("id")),
		PartnerID: callerID(c),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"order": o})
}

func (h *PartnerHandler) Release(c *gin.Context) {
	o, err := h.order.Release(c.Request.Context(), order.ReleaseCommand{
		OrderID:   types.ID(c.Param("id")),
		PartnerID: callerID(c),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"order": o})
}

type rateReq struct {
	Rating *float64 `json:"rating"`
	Review string   `json:"review"`
}

func (h *PartnerHandler) Rate(c *gin.Context) {
	var req rateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	// 4.5 must be rejected, not truncated to 4.
	if req.Rating == nil || *req.Rating != math.Trunc(*req.Rating) || *req.Rating < 1 || *req.Rating > 5 {
		writeOrderError(c, order.ErrInvalidRating)
		return
	}
	o, err := h.order.Rate(c.Request.Context(), order.RateCommand{
		OrderID:   types.ID(c.Param("id")),
		PartnerID: callerID(c),
		Rating:    int(*req.Rating),
		Review:    req.Review,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"order": o})
}

// bindOptionalJSON accepts an empty body, sized or chunked; a malformed one
// is a 400.
func bindOptionalJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
