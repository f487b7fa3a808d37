// README: User store backed by PostgreSQL (read-only from the order flow).
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carebridge/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id types.ID) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, phone, role, profession, is_verified, created_at
		FROM users
		WHERE id = $1`, string(id),
	)

	var u User
	var phone, profession *string
	err := row.Scan(&u.ID, &u.Name, &phone, &u.Role, &profession, &u.IsVerified, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}
	if phone != nil {
		u.Phone = *phone
	}
	if profession != nil {
		u.Profession = *profession
	}
	return &u, nil
}
