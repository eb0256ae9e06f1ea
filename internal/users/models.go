package users

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Address struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Street    string `json:"street" validate:"required"`
	Apartment string `json:"apartment,omitempty"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}

type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone,omitempty"`
	PasswordHash  string     `json:"-"`
	Role          Role       `json:"role"`
	IsActive      bool       `json:"isActive"`
	EmailVerified bool       `json:"emailVerified"`
	OTPCode       string     `json:"-"`
	OTPExpiresAt  *time.Time `json:"-"`
	OTPAttempts   int        `json:"-"`
	Addresses     []Address  `json:"addresses"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// ClearOTP drops the transient OTP fields after a successful verification.
func (u *User) ClearOTP() {
	u.OTPCode = ""
	u.OTPExpiresAt = nil
	u.OTPAttempts = 0
}

type ListQuery struct {
	Search string
	Page   int
	Limit  int
}
