package database

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/haribookstore/internal/models"
)

//go:embed books.json
var catalogJSON []byte

// SeedBooks loads the embedded catalog. Existing codes are left untouched.
func SeedBooks(conn *gorm.DB) (int64, error) {
	var books []models.Book
	if err := json.Unmarshal(catalogJSON, &books); err != nil {
		return 0, fmt.Errorf("parse catalog: %w", err)
	}
	if len(books) == 0 {
		return 0, nil
	}

	result := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&books)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		slog.Info("catalog seeded", "books", result.RowsAffected)
	}
	return result.RowsAffected, nil
}
