package model

import (
	"strings"
	"time"
)

// Role separates shoppers from back-office staff.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// GuestName is stored for accounts created from a checkout without a name.
const GuestName = "Cliente"

// User represents a storefront customer. Guest accounts have no password hash.
type User struct {
	ID               int64
	Email            string
	PasswordHash     string
	FullName         string
	Phone            string
	Address          Address
	Role             Role
	StripeCustomerID string
	CreatedAt        time.Time
}

// IsGuest reports whether the account was created implicitly by a checkout.
func (u User) IsGuest() bool {
	return u.PasswordHash == ""
}

// DisplayName falls back to the local part of the email.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// Address is a postal address as collected at checkout or in the profile.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// IsZero reports whether no address field is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String renders the address on a single line: "line1 line2, postal city, country".
func (a Address) String() string {
	street := strings.TrimSpace(strings.Join([]string{a.Line1, a.Line2}, " "))
	locality := strings.TrimSpace(strings.Join([]string{a.PostalCode, a.City}, " "))
	parts := make([]string, 0, 3)
	for _, p := range []string{street, locality, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// CustomerProfile is the contact data mirrored to the payment processor.
type CustomerProfile struct {
	UserID  int64
	Email   string
	Name    string
	Phone   string
	Address Address
}
