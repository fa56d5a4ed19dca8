package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/haribookstore/internal/models"
	"github.com/example/haribookstore/internal/utils"
)

// ResetUser deletes the account registered with email so the address can sign
// up again. It reports whether an account existed.
func ResetUser(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	result := db.WithContext(ctx).Where("email = ?", utils.NormalizeEmail(email)).Delete(&models.User{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetUserRole changes the stored role of an existing account.
func SetUserRole(ctx context.Context, db *gorm.DB, email, role string) error {
	if role != models.RoleAdmin && role != models.RoleCustomer {
		return newError(KindValidation, "unknown role %q", role)
	}

	result := db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", utils.NormalizeEmail(email)).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotRegistered
	}
	return nil
}
