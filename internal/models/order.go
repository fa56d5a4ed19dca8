package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentVerified = "verified"
	PaymentFailed   = "failed"
)

// OrderStatuses lists every status an admin may set.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValidOrderStatus reports whether status belongs to OrderStatuses.
func IsValidOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Address struct {
	Village  string `json:"village"`
	District string `json:"district"`
	Pincode  string `json:"pincode"`
	State    string `json:"state"`
}

// String renders the address on one line for emails and admin views.
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Village, a.District, a.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	line := strings.Join(parts, ", ")
	if a.Pincode != "" {
		line += " - " + a.Pincode
	}
	return line
}

type BookDetails struct {
	BookCode string          `json:"bookCode"`
	BookName string          `json:"bookName"`
	Price    decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
}

// Payment is the customer's proof of a manual UPI transfer. UTR is the bank
// transaction reference and may back at most one order.
type Payment struct {
	UTR                string          `gorm:"uniqueIndex;not null" json:"utr"`
	Amount             decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	UPIID              string          `json:"upiId"`
	VerificationStatus string          `gorm:"not null;default:pending" json:"verificationStatus"`
}

// StatusChange is one entry of an order's audit trail.
type StatusChange struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	Notes  string    `json:"notes,omitempty"`
}

// Order is a single purchase attempt awaiting or past manual payment verification.
type Order struct {
	BaseModel
	CustomerName  string                            `json:"customerName"`
	CustomerEmail string                            `gorm:"index" json:"customerEmail"`
	Mobile        string                            `json:"mobile"`
	Address       Address                           `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	BookDetails   BookDetails                       `gorm:"embedded;embeddedPrefix:book_" json:"bookDetails"`
	Payment       Payment                           `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	OrderStatus   string                            `gorm:"index;not null;default:pending" json:"orderStatus"`
	AdminNotes    string                            `json:"adminNotes"`
	ConfirmedAt   *time.Time                        `json:"confirmedDate"`
	ShippedAt     *time.Time                        `json:"shippedDate"`
	DeliveredAt   *time.Time                        `json:"deliveredDate"`
	StatusHistory datatypes.JSONSlice[StatusChange] `json:"statusHistory"`
}

// RecordStatus appends a history entry for the current status.
func (o *Order) RecordStatus(at time.Time, notes string) {
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		Status: o.OrderStatus,
		At:     at,
		Notes:  notes,
	})
}
