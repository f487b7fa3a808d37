// README: Order service implements partner-facing state transitions.
package order

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"carebridge/internal/modules/user"
	"carebridge/internal/observability"
	"carebridge/internal/types"
)

// UserDirectory resolves partner profiles.
type UserDirectory interface {
	Get(ctx context.Context, id types.ID) (*user.User, error)
}

type Service struct {
	store   Repository
	users   UserDirectory
	kyc     UserDirectory
	events  Publisher
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
}

// NewService builds the order service. users serves category routing and may
// be cached; kyc is read on every gated transition and must be the source of
// truth. A nil kyc reuses users.
func NewService(store Repository, users, kyc UserDirectory, events Publisher, logger *slog.Logger) *Service {
	if kyc == nil {
		kyc = users
	}
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		users:   users,
		kyc:     kyc,
		events:  events,
		logger:  logger,
		now:     time.Now,
		timeout: 2 * time.Second,
	}
}

var (
	ErrNotFound           = errors.New("order not found")
	ErrNotAvailable       = errors.New("order not available for acceptance")
	ErrKYCRequired        = errors.New("KYC verification required")
	ErrNotAssigned        = errors.New("order not found or not assigned to you")
	ErrMustBeAccepted     = errors.New("order must be accepted before completion")
	ErrReleaseNotAccepted = errors.New("only accepted orders can be released")
	ErrInvalidRating      = errors.New("rating must be an integer between 1 and 5")
	ErrForbidden          = errors.New("order belongs to another user")
	ErrConflict           = errors.New("order state conflict")
	ErrBadRequest         = errors.New("bad request")
)

type CreateCommand struct {
	PatientID        types.ID
	PatientName      string
	PatientContact   string
	Location         *types.Point
	Address          string
	ServiceType      string
	ServiceCategory  string
	EquipmentName    string
	EquipmentModel   string
	IssueDescription string
	Urgency          string
	QuotedPrice      *types.Money
}

type AcceptCommand struct {
	OrderID   types.ID
	PartnerID types.ID
	// ServiceType, when set, replaces the order's service type on accept.
	ServiceType string
}

type DeclineCommand struct {
	OrderID   types.ID
	PartnerID types.ID
}

type CompleteCommand struct {
	OrderID   types.ID
	PartnerID types.ID
}

type ReleaseCommand struct {
	OrderID   types.ID
	PartnerID types.ID
}

type RateCommand struct {
	OrderID   types.ID
	PartnerID types.ID
	Rating    int
	Review    string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.PatientID == "" || strings.TrimSpace(cmd.ServiceCategory) == "" ||
		strings.TrimSpace(cmd.PatientName) == "" || strings.TrimSpace(cmd.PatientContact) == "" {
		return nil, ErrBadRequest
	}
	if cmd.QuotedPrice != nil && cmd.QuotedPrice.Amount < 0 {
		return nil, ErrBadRequest
	}

	now := s.now().UTC()
	o := &Order{
		ID:               types.ID(uuid.NewString()),
		PatientID:        cmd.PatientID,
		PatientName:      strings.TrimSpace(cmd.PatientName),
		PatientContact:   strings.TrimSpace(cmd.PatientContact),
		Location:         cmd.Location,
		Address:          cmd.Address,
		ServiceType:      cmd.ServiceType,
		ServiceCategory:  cmd.ServiceCategory,
		Category:         ParseCategory(cmd.ServiceCategory),
		EquipmentName:    cmd.EquipmentName,
		EquipmentModel:   cmd.EquipmentModel,
		IssueDescription: cmd.IssueDescription,
		Urgency:          cmd.Urgency,
		Status:           StatusPending,
		StatusVersion:    0,
		QuotedPrice:      cmd.QuotedPrice,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if o.QuotedPrice != nil && o.QuotedPrice.Currency == "" {
		o.QuotedPrice.Currency = types.DefaultCurrency
	}
	if err := s.store.Create(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, Event{
		OrderID:    o.ID,
		FromStatus: StatusNone,
		ToStatus:   StatusPending,
		ActorID:    cmd.PatientID,
		CreatedAt:  now,
	})
	return o, nil
}

// Get returns the order to its requester or its current assignee.
func (s *Service) Get(ctx context.Context, id, callerID types.ID) (*Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PatientID != callerID && !o.AssignedTo(callerID) {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListForPartner returns pending orders in the partner's category plus every
// order assigned to the partner, newest first.
func (s *Service) ListForPartner(ctx context.Context, partnerID types.ID) ([]*Order, error) {
	bucket := CategoryBiomedical
	u, err := s.users.Get(ctx, partnerID)
	switch {
	case err == nil:
		bucket = ParseCategory(u.Profession)
	case !errors.Is(err, user.ErrNotFound):
		return nil, err
	}

	return s.store.ListVisible(ctx, partnerID, bucket)
}

func (s *Service) Accept(ctx context.Context, cmd AcceptCommand) (*Order, error) {
	if err := s.requireKYC(ctx, cmd.PartnerID); err != nil {
		return nil, err
	}
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusAccepted) {
		s.record("accept", "rejected")
		return nil, ErrNotAvailable
	}

	now := s.now().UTC()
	next := o.clone()
	next.Status = StatusAccepted
	next.AssignedEngineerID = &cmd.PartnerID
	next.RespondedAt = &now
	if cmd.ServiceType != "" {
		next.ServiceType = cmd.ServiceType
	}
	// A lost race means another partner already took the order.
	if err := s.commit(ctx, "accept", o, next, cmd.PartnerID, ErrNotAvailable); err != nil {
		return nil, err
	}
	return next, nil
}

// Decline either withdraws the caller from an accepted order (returning it to
// the pool) or marks a pending order declined. Any other state is a no-op.
func (s *Service) Decline(ctx context.Context, cmd DeclineCommand) (*Order, error) {
	if err := s.requireKYC(ctx, cmd.PartnerID); err != nil {
		return nil, err
	}
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	switch {
	case o.Status == StatusAccepted && o.AssignedTo(cmd.PartnerID):
		next := s.returnToPool(o)
		if err := s.commit(ctx, "decline", o, next, cmd.PartnerID, ErrConflict); err != nil {
			return nil, err
		}
		return next, nil
	case o.Status == StatusPending:
		now := s.now().UTC()
		next := o.clone()
		next.Status = StatusDeclined
		next.AssignedEngineerID = nil
		next.RespondedAt = &now
		if err := s.commit(ctx, "decline", o, next, cmd.PartnerID, ErrConflict); err != nil {
			return nil, err
		}
		return next, nil
	default:
		s.record("decline", "noop")
		return o, nil
	}
}

func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (*Order, error) {
	o, err := s.assigned(ctx, cmd.OrderID, cmd.PartnerID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusCompleted) {
		s.record("complete", "rejected")
		return nil, ErrMustBeAccepted
	}

	now := s.now().UTC()
	next := o.clone()
	next.Status = StatusCompleted
	next.CompletedAt = &now
	if err := s.commit(ctx, "complete", o, next, cmd.PartnerID, ErrConflict); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Service) Release(ctx context.Context, cmd ReleaseCommand) (*Order, error) {
	o, err := s.assigned(ctx, cmd.OrderID, cmd.PartnerID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusAccepted {
		s.record("release", "rejected")
		return nil, ErrReleaseNotAccepted
	}
	next := s.returnToPool(o)
	if err := s.commit(ctx, "release", o, next, cmd.PartnerID, ErrConflict); err != nil {
		return nil, err
	}
	return next, nil
}

// Rate records feedback on an order the partner holds. Status is unchanged.
func (s *Service) Rate(ctx context.Context, cmd RateCommand) (*Order, error) {
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return nil, ErrInvalidRating
	}
	o, err := s.assigned(ctx, cmd.OrderID, cmd.PartnerID)
	if err != nil {
		return nil, err
	}

	rating := cmd.Rating
	next := o.clone()
	next.UserRating = &rating
	next.UserReview = cmd.Review
	if err := s.commit(ctx, "rate", o, next, cmd.PartnerID, ErrConflict); err != nil {
		return nil, err
	}
	return next, nil
}

// returnToPool builds the pending copy of an accepted order with the
// assignment and response time cleared.
func (s *Service) returnToPool(o *Order) *Order {
	next := o.clone()
	next.Status = StatusPending
	next.AssignedEngineerID = nil
	next.RespondedAt = nil
	return next
}

func (s *Service) assigned(ctx context.Context, orderID, partnerID types.ID) (*Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotAssigned
	}
	if err != nil {
		return nil, err
	}
	if !o.AssignedTo(partnerID) {
		return nil, ErrNotAssigned
	}
	return o, nil
}

func (s *Service) requireKYC(ctx context.Context, partnerID types.ID) error {
	u, err := s.kyc.Get(ctx, partnerID)
	if errors.Is(err, user.ErrNotFound) {
		return ErrKYCRequired
	}
	if err != nil {
		return err
	}
	if !u.IsVerified {
		return ErrKYCRequired
	}
	return nil
}

// commit bumps the version and swaps next in. lost is returned when another
// writer got there first.
func (s *Service) commit(ctx context.Context, transition string, prev, next *Order, actor types.ID, lost error) error {
	next.StatusVersion = prev.StatusVersion + 1
	next.UpdatedAt = s.now().UTC()

	ok, err := s.store.Swap(ctx, prev.Status, prev.StatusVersion, next)
	if err != nil {
		s.record(transition, "error")
		return err
	}
	if !ok {
		s.record(transition, "conflict")
		return lost
	}
	s.record(transition, "ok")
	s.logger.InfoContext(ctx, "order transition",
		"order_id", next.ID,
		"transition", transition,
		"from", prev.Status,
		"to", next.Status,
		"actor_id", actor,
	)
	if prev.Status != next.Status {
		s.publish(ctx, Event{
			OrderID:    next.ID,
			FromStatus: prev.Status,
			ToStatus:   next.Status,
			ActorID:    actor,
			CreatedAt:  next.UpdatedAt,
		})
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "publish order event failed", "order_id", e.OrderID, "error", err)
	}
}

func (s *Service) record(transition, result string) {
	observability.OrderTransitionsTotal.WithLabelValues(transition, result).Inc()
}
