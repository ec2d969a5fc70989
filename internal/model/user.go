package model

import (
	"strings"
	"time"
)

// Role is the closed set of account roles.  Authorization decisions are
// made against these constants only; arbitrary role strings coming from
// a token or a request body are rejected by ParseRole.
type Role string

const (
	RoleCustomer Role = "customer" // ordinary shopper
	RoleSeller   Role = "seller"   // may manage order fulfilment
	RoleAdmin    Role = "admin"    // full access, satisfies every gate
)

// ParseRole normalizes and validates a role string.  Unknown values are
// reported via ok=false rather than silently defaulting.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleSeller:
		return RoleSeller, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Satisfies reports whether a user holding role r may pass a gate that
// requires the given role.  Admin satisfies every requirement; seller and
// customer are incomparable with each other.
func (r Role) Satisfies(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// User mirrors the `users` table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  Name         – display name shown in the storefront.
//  PasswordHash – bcrypt hashed password; the plaintext is never stored.
//  Role         – account role (customer, seller or admin).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Name         string    // users.name
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
