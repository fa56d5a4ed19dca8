package models

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a storefront account. Signup goes through an emailed OTP
// before the account is verified.
type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	FullName     string     `json:"fullname"`
	PasswordHash string     `json:"-"`
	Verified     bool       `json:"verified"`
	Role         string     `gorm:"not null;default:customer" json:"role"`
	OTPHash      *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
}

// ClearOTP drops the pending code once it has been consumed.
func (u *User) ClearOTP() {
	u.OTPHash = nil
	u.OTPExpiresAt = nil
}
