// README: User profile as seen by the order module (identity, profession, KYC flag).
package user

import (
	"errors"
	"time"

	"carebridge/internal/types"
)

var ErrNotFound = errors.New("user not found")

type Role string

const (
	RolePatient Role = "patient"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID         types.ID  `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Role       Role      `json:"role"`
	Profession string    `json:"profession,omitempty"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}
