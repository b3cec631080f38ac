package models

import (
	"fmt"
	"time"
)

// Role is the account type the platform assigns to a user.
type Role string

const (
	RoleClient      Role = "client"
	RoleVendorOwner Role = "vendor_owner"
	RoleDriver      Role = "driver"
	RoleAdmin       Role = "admin"
	RoleEmployee    Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleVendorOwner, RoleDriver, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// User is the identity record returned by login and /auth/profile.
type User struct {
	ID              ID         `json:"id"`
	Name            string     `json:"name"`
	PhoneNumber     string     `json:"phone_number"`
	Email           *string    `json:"email,omitempty"`
	Type            Role       `json:"type"`
	IsVerified      bool       `json:"is_verified"`
	IsPhoneVerified bool       `json:"is_phone_verified"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

func (u *User) Validate() error {
	if u == nil {
		return fmt.Errorf("%w: user is missing", ErrMalformedResponse)
	}
	if u.ID == "" {
		return fmt.Errorf("%w: user id is empty", ErrMalformedResponse)
	}
	if u.PhoneNumber == "" {
		return fmt.Errorf("%w: user %s has no phone number", ErrMalformedResponse, u.ID)
	}
	if !u.Type.Valid() {
		return fmt.Errorf("%w: user %s has unknown role %q", ErrMalformedResponse, u.ID, u.Type)
	}
	return nil
}

// IsVendorOwner reports whether the user may operate a storefront.
func (u *User) IsVendorOwner() bool { return u != nil && u.Type == RoleVendorOwner }
