package models

import "github.com/shopspring/decimal"

const (
	BookCategorySale    = "Sale"
	BookCategorySoldOut = "Sold Out"
)

// Book is read-mostly catalog data seeded from the embedded catalog file.
type Book struct {
	BaseModel
	Code        string          `gorm:"uniqueIndex;not null" json:"bookcode"`
	Name        string          `json:"name"`
	Donor       string          `json:"donor"`
	Description string          `json:"description"`
	Category    string          `gorm:"index" json:"category"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
}
