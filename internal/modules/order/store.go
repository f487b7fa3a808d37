// README: Order store backed by PostgreSQL.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carebridge/internal/types"
)

// Repository is the persistence contract shared by every backend.
// Swap commits next only if the stored row still carries (from, version);
// a lost race reports false with a nil error.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	// ListVisible returns pending orders in bucket plus every order assigned
	// to partnerID, newest first.
	ListVisible(ctx context.Context, partnerID types.ID, bucket Category) ([]*Order, error)
	Swap(ctx context.Context, from Status, version int, next *Order) (bool, error)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const selectOrderColumns = `
	SELECT id, patient_id, patient_name, patient_contact,
	       location_lat, location_lng, address,
	       service_type, service_category, category,
	       equipment_name, equipment_model, issue_description, urgency,
	       status, status_version, assigned_engineer_id,
	       quoted_price, quoted_currency, user_rating, user_review,
	       created_at, updated_at, responded_at, completed_at
	FROM service_orders`

func (s *Store) Create(ctx context.Context, o *Order) error {
	var lat, lng *float64
	if o.Location != nil {
		lat, lng = &o.Location.Lat, &o.Location.Lng
	}
	var price *int64
	var currency *string
	if o.QuotedPrice != nil {
		price, currency = &o.QuotedPrice.Amount, &o.QuotedPrice.Currency
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO service_orders (
			id, patient_id, patient_name, patient_contact,
			location_lat, location_lng, address,
			service_type, service_category, category,
			equipment_name, equipment_model, issue_description, urgency,
			status, status_version, assigned_engineer_id,
			quoted_price, quoted_currency, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17,
			$18, $19, $20, $21
		)`,
		string(o.ID), string(o.PatientID), o.PatientName, o.PatientContact,
		lat, lng, o.Address,
		o.ServiceType, o.ServiceCategory, string(o.Category),
		o.EquipmentName, o.EquipmentModel, o.IssueDescription, o.Urgency,
		string(o.Status), o.StatusVersion, toStringPtr(o.AssignedEngineerID),
		price, currency, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, selectOrderColumns+` WHERE id = $1`, string(id))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order %s: %w", id, err)
	}
	return o, nil
}

func (s *Store) ListVisible(ctx context.Context, partnerID types.ID, bucket Category) ([]*Order, error) {
	rows, err := s.db.Query(ctx, selectOrderColumns+`
		WHERE (status = 'pending' AND category = $2) OR assigned_engineer_id = $1
		ORDER BY created_at DESC`, string(partnerID), string(bucket),
	)
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", partnerID, err)
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) Swap(ctx context.Context, from Status, version int, next *Order) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE service_orders
		SET status = $1,
		    status_version = $2,
		    assigned_engineer_id = $3,
		    service_type = $4,
		    user_rating = $5,
		    user_review = $6,
		    updated_at = $7,
		    responded_at = $8,
		    completed_at = $9
		WHERE id = $10 AND status = $11 AND status_version = $12`,
		string(next.Status),
		next.StatusVersion,
		toStringPtr(next.AssignedEngineerID),
		next.ServiceType,
		next.UserRating,
		next.UserReview,
		next.UpdatedAt,
		next.RespondedAt,
		next.CompletedAt,
		string(next.ID),
		string(from),
		version,
	)
	if err != nil {
		return false, fmt.Errorf("update order %s: %w", next.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var lat, lng *float64
	var address, equipmentName, equipmentModel, issue, urgency, review *string
	var category string
	var assigned *string
	var price *int64
	var currency *string
	var respondedAt, completedAt *time.Time

	err := row.Scan(
		&o.ID, &o.PatientID, &o.PatientName, &o.PatientContact,
		&lat, &lng, &address,
		&o.ServiceType, &o.ServiceCategory, &category,
		&equipmentName, &equipmentModel, &issue, &urgency,
		&o.Status, &o.StatusVersion, &assigned,
		&price, &currency, &o.UserRating, &review,
		&o.CreatedAt, &o.UpdatedAt, &respondedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lng != nil {
		o.Location = &types.Point{Lat: *lat, Lng: *lng}
	}
	o.Category = Category(category)
	o.Address = deref(address)
	o.EquipmentName = deref(equipmentName)
	o.EquipmentModel = deref(equipmentModel)
	o.IssueDescription = deref(issue)
	o.Urgency = deref(urgency)
	o.UserReview = deref(review)
	if assigned != nil {
		id := types.ID(*assigned)
		o.AssignedEngineerID = &id
	}
	if price != nil {
		o.QuotedPrice = &types.Money{Amount: *price, Currency: deref(currency)}
		if o.QuotedPrice.Currency == "" {
			o.QuotedPrice.Currency = types.DefaultCurrency
		}
	}
	o.RespondedAt = respondedAt
	o.CompletedAt = completedAt
	return &o, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
