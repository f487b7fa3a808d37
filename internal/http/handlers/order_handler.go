// README: Patient-facing order handlers (create, get).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carebridge/internal/modules/order"
	"carebridge/internal/types"
)

type OrderHandler struct {
	order *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{order: svc}
}

type createOrderReq struct {
	PatientName      string       `json:"patient_name"`
	PatientContact   string       `json:"patient_contact"`
	Location         *types.Point `json:"location"`
	Address          string       `json:"address"`
	ServiceType      string       `json:"service_type"`
	ServiceCategory  string       `json:"service_category"`
	EquipmentName    string       `json:"equipment_name"`
	EquipmentModel   string       `json:"equipment_model"`
	IssueDescription string       `json:"issue_description"`
	Urgency          string       `json:"urgency"`
	QuotedPrice      *int64       `json:"quoted_price"`
	QuotedCurrency   string       `json:"quoted_currency"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var quoted *types.Money
	if req.QuotedPrice != nil {
		quoted = &types.Money{Amount: *req.QuotedPrice, Currency: req.QuotedCurrency}
	}
	o, err := h.order.Create(c.Request.Context(), order.CreateCommand{
		PatientID:        callerID(c),
		PatientName:      req.PatientName,
		PatientContact:   req.PatientContact,
		Location:         req.Location,
		Address:          req.Address,
		ServiceType:      req.ServiceType,
		ServiceCategory:  req.ServiceCategory,
		EquipmentName:    req.EquipmentName,
		EquipmentModel:   req.EquipmentModel,
		IssueDescription: req.IssueDescription,
		Urgency:          req.Urgency,
		QuotedPrice:      quoted,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"order": o})
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.order.Get(c.Request.Context(), types.ID(c.Param("id")), callerID(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"order": o})
}
