package user

import (
	"strings"
	"time"
)

type Type string

const (
	TypeBuyer  Type = "buyer"
	TypeFarmer Type = "farmer"
	TypeAdmin  Type = "admin"
)

// User represents a registered account. Farm fields are kept only for
// farmer accounts.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	FarmName     string    `json:"farmName,omitempty"`
	Location     string    `json:"location,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Type         Type      `json:"userType"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FullName falls back to username, then email, when no name parts are set.
func (u *User) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}

	return u.Email
}
