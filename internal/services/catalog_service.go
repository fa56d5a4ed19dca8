package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/haribookstore/internal/models"
)

// CatalogService reads the book catalog.
type CatalogService struct {
	db *gorm.DB
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// List returns all books, optionally restricted to one category.
func (s *CatalogService) List(ctx context.Context, category string) ([]models.Book, error) {
	query := s.db.WithContext(ctx).Model(&models.Book{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var books []models.Book
	if err := query.Order("code asc").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// GetByCode looks a book up by its catalog code.
func (s *CatalogService) GetByCode(ctx context.Context, code string) (*models.Book, error) {
	var book models.Book
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}
