// README: Service order aggregate and status definitions.
package order

import (
	"time"

	"carebridge/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
)

type Order struct {
	ID                 types.ID     `json:"id"`
	PatientID          types.ID     `json:"patient_id"`
	PatientName        string       `json:"patient_name"`
	PatientContact     string       `json:"patient_contact"`
	Location           *types.Point `json:"location,omitempty"`
	Address            string       `json:"address,omitempty"`
	ServiceType        string       `json:"service_type"`
	ServiceCategory    string       `json:"service_category"`
	Category           Category     `json:"category"`
	EquipmentName      string       `json:"equipment_name,omitempty"`
	EquipmentModel     string       `json:"equipment_model,omitempty"`
	IssueDescription   string       `json:"issue_description,omitempty"`
	Urgency            string       `json:"urgency,omitempty"`
	Status             Status       `json:"status"`
	StatusVersion      int          `json:"status_version"`
	AssignedEngineerID *types.ID    `json:"assigned_engineer_id"`
	QuotedPrice        *types.Money `json:"quoted_price,omitempty"`
	UserRating         *int         `json:"user_rating,omitempty"`
	UserReview         string       `json:"user_review,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
	RespondedAt        *time.Time   `json:"responded_at,omitempty"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
}

// AssignedTo reports whether partnerID currently holds the order.
func (o *Order) AssignedTo(partnerID types.ID) bool {
	return o.AssignedEngineerID != nil && *o.AssignedEngineerID == partnerID
}

// Bucket is the routing category of the order. Rows written before the
// category column existed fall back to parsing the free-text category.
func (o *Order) Bucket() Category {
	if o.Category.Valid() {
		return o.Category
	}
	return ParseCategory(o.ServiceCategory)
}

func (o *Order) clone() *Order {
	c := *o
	if o.Location != nil {
		p := *o.Location
		c.Location = &p
	}
	if o.AssignedEngineerID != nil {
		id := *o.AssignedEngineerID
		c.AssignedEngineerID = &id
	}
	if o.QuotedPrice != nil {
		m := *o.QuotedPrice
		c.QuotedPrice = &m
	}
	if o.UserRating != nil {
		r := *o.UserRating
		c.UserRating = &r
	}
	if o.RespondedAt != nil {
		t := *o.RespondedAt
		c.RespondedAt = &t
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// Event is published for every committed status change.
type Event struct {
	OrderID    types.ID  `json:"order_id"`
	FromStatus Status    `json:"from"`
	ToStatus   Status    `json:"to"`
	ActorID    types.ID  `json:"actor_id"`
	CreatedAt  time.Time `json:"at"`
}

// AllowedTransitions represents the order state flow (diagram) as code.
// accepted -> pending is the return-to-pool edge shared by decline and release.
var AllowedTransitions = map[Status][]Status{
	StatusNone:     {StatusPending},
	StatusPending:  {StatusAccepted, StatusDeclined},
	StatusAccepted: {StatusCompleted, StatusPending},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
