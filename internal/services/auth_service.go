package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/example/haribookstore/internal/config"
	"github.com/example/haribookstore/internal/models"
	"github.com/example/haribookstore/internal/utils"
)

// OTPTTL is how long an emailed signup code stays valid.
const OTPTTL = 5 * time.Minute

const minPasswordLength = 6

// AuthService implements OTP signup, direct signup and login.
type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	notifier *Notifier
	now      func() time.Time
	newCode  func() (string, error)
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, cfg *config.Config, notifier *Notifier) *AuthService {
	return &AuthService{
		db:       db,
		cfg:      cfg,
		notifier: notifier,
		now:      time.Now,
		newCode:  generateVerificationCode,
	}
}

// Session is a successful authentication.
type Session struct {
	User  *models.User
	Token string
}

// RequestOTP stores a fresh code for email and mails it. A previous pending
// code for the same email is overwritten.
func (s *AuthService) RequestOTP(ctx context.Context, email, fullName, password string) error {
	email = utils.NormalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	password = strings.TrimSpace(password)

	if email == "" || fullName == "" || password == "" {
		return ErrSignupFieldsRequired
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if exists && user.Verified {
		return ErrAlreadyVerified
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	otpHash, err := utils.HashPassword(code)
	if err != nil {
		return fmt.Errorf("hash otp: %w", err)
	}
	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	expiresAt := s.now().Add(OTPTTL)

	user.Email = email
	user.FullName = fullName
	user.PasswordHash = passwordHash
	user.Verified = false
	user.OTPHash = &otpHash
	user.OTPExpiresAt = &expiresAt
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}

	if exists {
		err = s.db.WithContext(ctx).Save(&user).Error
	} else {
		err = s.db.WithContext(ctx).Create(&user).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent request registered the email first.
			err = s.replacePending(ctx, &user)
		}
	}
	if err != nil {
		return err
	}

	if err := s.notifier.SendOTP(ctx, email, fullName, code, OTPTTL); err != nil {
		slog.ErrorContext(ctx, "otp email failed", "email", email, "error", err)
		return ErrOTPDelivery
	}

	return nil
}

// replacePending overwrites the unverified row another request created for
// user.Email with user's fresh code and password.
func (s *AuthService) replacePending(ctx context.Context, user *models.User) error {
	var current models.User
	if err := s.db.WithContext(ctx).Where("email = ?", user.Email).First(&current).Error; err != nil {
		return err
	}
	if current.Verified {
		return ErrAlreadyVerified
	}

	user.ID = current.ID
	user.CreatedAt = current.CreatedAt
	user.Role = current.Role
	return s.db.WithContext(ctx).Save(user).Error
}

// VerifyOTP checks code against the stored hash and, on success, marks the
// account verified and opens a session.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	email = utils.NormalizeEmail(email)
	code = strings.TrimSpace(code)

	if email == "" || code == "" {
		return nil, ErrOTPFieldsRequired
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotRegistered
		}
		return nil, err
	}

	if user.OTPHash == nil || user.OTPExpiresAt == nil {
		return nil, ErrNoOTP
	}

	if user.OTPExpiresAt.Before(s.now()) {
		return nil, ErrOTPExpired
	}

	if !utils.CheckPassword(*user.OTPHash, code) {
		return nil, ErrInvalidOTP
	}

	user.Verified = true
	user.ClearOTP()
	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}

	return s.session(&user)
}

// Signup creates an already verified account without the OTP round-trip.
func (s *AuthService) Signup(ctx context.Context, fullName, email, password string) (*Session, error) {
	fullName = strings.TrimSpace(fullName)
	email = utils.NormalizeEmail(email)

	if fullName == "" || email == "" || password == "" {
		return nil, ErrSignupRequired
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Verified:     true,
		Role:         models.RoleCustomer,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return s.session(&user)
}

// Login authenticates a verified account by password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = utils.NormalizeEmail(email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Verified {
		return nil, ErrNotVerified
	}
	if user.PasswordHash == "" {
		return nil, ErrAccountIncomplete
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.session(&user)
}

// RoleFor resolves the role carried in the session token.
func (s *AuthService) RoleFor(user *models.User) string {
	if user.Role == models.RoleAdmin || s.cfg.IsAdminEmail(user.Email) {
		return models.RoleAdmin
	}
	return models.RoleCustomer
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, user.Email, s.RoleFor(user), s.cfg.TokenExpires)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
