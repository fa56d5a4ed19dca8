package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures a caller can act on.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindExpired
)

// Error carries a user-facing message and its kind.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrSignupFieldsRequired = &Error{KindValidation, "Email, fullname, and password are required"}
	ErrAlreadyVerified      = &Error{KindConflict, "User already exists and is verified. Please login."}
	ErrOTPFieldsRequired    = &Error{KindValidation, "Email and OTP are required"}
	ErrUserNotRegistered    = &Error{KindNotFound, "User not found. Please register first."}
	ErrNoOTP                = &Error{KindValidation, "No OTP found. Please request a new one."}
	ErrOTPExpired           = &Error{KindExpired, "OTP expired. Please request a new one."}
	ErrInvalidOTP           = &Error{KindAuth, "Invalid OTP. Please check your email."}
	ErrOTPDelivery          = &Error{KindInternal, "Failed to send OTP"}

	ErrSignupRequired     = &Error{KindValidation, "Full name, email, and password are required"}
	ErrPasswordTooShort   = &Error{KindValidation, "Password must be at least 6 characters long"}
	ErrUserExists         = &Error{KindConflict, "User already exists. Please login instead."}
	ErrInvalidCredentials = &Error{KindAuth, "Invalid email or password"}
	ErrNotVerified        = &Error{KindAuth, "Please verify your account first"}
	ErrAccountIncomplete  = &Error{KindAuth, "Account not properly set up. Please contact support."}

	ErrOrderFieldsRequired = &Error{KindValidation, "All fields are required"}
	ErrStateNotServed      = &Error{KindValidation, "Sorry, we only deliver to Andhra Pradesh, Telangana, and Odisha"}
	ErrBookNotFound        = &Error{KindNotFound, "Book not found with the provided book code"}
	ErrUTRUsed             = &Error{KindConflict, "UTR number already used. Please check your UTR number."}
	ErrOrderNotFound       = &Error{KindNotFound, "Order not found"}
	ErrInvalidStatus       = &Error{KindValidation, "Invalid status"}
)
