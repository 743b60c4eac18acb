package models

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is an account record. Shadow users are created on guest checkout and
// carry no password hash until they register with the same email.
type User struct {
	ID               int64          `json:"id" db:"id"`
	Email            string         `json:"email" db:"email"`
	PasswordHash     sql.NullString `json:"-" db:"password_hash"`
	Name             string         `json:"name" db:"name"`
	Role             Role           `json:"role" db:"role"`
	LoyaltyPoints    int            `json:"loyalty_points" db:"loyalty_points"`
	IsShadow         bool           `json:"is_shadow" db:"is_shadow"`
	StripeCustomerID sql.NullString `json:"-" db:"stripe_customer_id"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

// QualifiesForFreeShipping reports whether orders for this user ship free.
// Guest-created shadow accounts pay the flat guest fee.
func (u *User) QualifiesForFreeShipping() bool {
	return u != nil && !u.IsShadow
}
