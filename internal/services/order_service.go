package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/haribookstore/internal/models"
	"github.com/example/haribookstore/internal/utils"
)

// Every book sells at one flat price plus a flat delivery charge.
var (
	BookPrice      = decimal.NewFromInt(1)
	DeliveryCharge = decimal.NewFromInt(34)
	OrderTotal     = BookPrice.Add(DeliveryCharge)
)

// DeliveryStates are the only states orders ship to.
var DeliveryStates = []string{"Andhra Pradesh", "Telangana", "Odisha"}

func isDeliveryState(state string) bool {
	for _, s := range DeliveryStates {
		if s == state {
			return true
		}
	}
	return false
}

// OrderService is the order ledger.
type OrderService struct {
	db       *gorm.DB
	catalog  *CatalogService
	notifier *Notifier
	upiID    string
	now      func() time.Time
}

// NewOrderService constructs an OrderService.
func NewOrderService(db *gorm.DB, catalog *CatalogService, notifier *Notifier, upiID string) *OrderService {
	return &OrderService{
		db:       db,
		catalog:  catalog,
		notifier: notifier,
		upiID:    upiID,
		now:      time.Now,
	}
}

// CreateOrderInput is the checkout form.
type CreateOrderInput struct {
	CustomerName  string
	CustomerEmail string
	Mobile        string
	Village       string
	District      string
	Pincode       string
	State         string
	BookCode      string
	BookName      string
	UTR           string
	Amount        decimal.Decimal
}

func (in *CreateOrderInput) normalize() {
	for _, f := range []*string{
		&in.CustomerName, &in.CustomerEmail, &in.Mobile, &in.Village, &in.District,
		&in.Pincode, &in.State, &in.BookCode, &in.BookName, &in.UTR,
	} {
		*f = strings.TrimSpace(*f)
	}
	in.CustomerEmail = utils.NormalizeEmail(in.CustomerEmail)
}

func (in *CreateOrderInput) complete() bool {
	for _, f := range []string{
		in.CustomerName, in.CustomerEmail, in.Mobile, in.Village, in.District,
		in.Pincode, in.State, in.BookCode, in.BookName, in.UTR,
	} {
		if f == "" {
			return false
		}
	}
	return !in.Amount.IsZero()
}

// CreateOrder validates a checkout submission and records it as pending.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	in.normalize()
	if !in.complete() {
		return nil, ErrOrderFieldsRequired
	}

	if !isDeliveryState(in.State) {
		return nil, ErrStateNotServed
	}

	book, err := s.catalog.GetByCode(ctx, in.BookCode)
	if err != nil {
		return nil, err
	}

	if !in.Amount.Equal(OrderTotal) {
		return nil, newError(KindValidation, "Price mismatch. Expected total: ₹%s, Received: ₹%s",
			OrderTotal.String(), in.Amount.String())
	}

	var used int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("payment_utr = ?", in.UTR).Count(&used).Error; err != nil {
		return nil, err
	}
	if used > 0 {
		return nil, ErrUTRUsed
	}

	order := models.Order{
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Mobile:        in.Mobile,
		Address: models.Address{
			Village:  in.Village,
			District: in.District,
			Pincode:  in.Pincode,
			State:    in.State,
		},
		BookDetails: models.BookDetails{
			BookCode: book.Code,
			BookName: book.Name,
			Price:    BookPrice,
		},
		Payment: models.Payment{
			UTR:                in.UTR,
			Amount:             in.Amount,
			UPIID:              s.upiID,
			VerificationStatus: models.PaymentPending,
		},
		OrderStatus: models.OrderStatusPending,
	}
	order.RecordStatus(s.now(), "")

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		// Two concurrent submissions can both pass the count above; the unique index decides.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUTRUsed
		}
		return nil, err
	}

	s.notifier.OrderPlaced(order)
	return &order, nil
}

// OrderFilter narrows ListOrders.
type OrderFilter struct {
	CustomerEmail string
	Status        string
	Page          utils.Pagination
}

// ListOrders returns the newest orders first, at most one page.
func (s *OrderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	page := filter.Page
	if page.Limit == 0 {
		page = utils.NewPagination(1, utils.MaxPageSize)
	}

	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.CustomerEmail != "" {
		query = query.Where("customer_email = ?", utils.NormalizeEmail(filter.CustomerEmail))
	}
	if filter.Status != "" {
		query = query.Where("order_status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, 0)
	if err := query.Order("created_at desc").
		Limit(page.Limit).Offset(page.Offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetOrder loads one order by id.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ConfirmOrder records the admin's payment review. Only "verified" confirms
// the order; any other value, including none, cancels it.
func (s *OrderService) ConfirmOrder(ctx context.Context, id, verificationStatus, notes string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if strings.TrimSpace(verificationStatus) == models.PaymentVerified {
		order.Payment.VerificationStatus = models.PaymentVerified
		order.OrderStatus = models.OrderStatusConfirmed
		order.ConfirmedAt = &now
	} else {
		order.Payment.VerificationStatus = models.PaymentFailed
		order.OrderStatus = models.OrderStatusCancelled
		order.ConfirmedAt = nil
	}
	order.AdminNotes = strings.TrimSpace(notes)
	order.RecordStatus(now, order.AdminNotes)

	if err := s.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}

	s.notifier.PaymentReviewed(*order)
	return order, nil
}

// UpdateStatus sets any valid status. Shipped and delivered times are
// stamped the first time the order reaches them and never overwritten.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status, notes string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	if !models.IsValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order.OrderStatus = status
	if notes = strings.TrimSpace(notes); notes != "" {
		order.AdminNotes = notes
	}
	if status == models.OrderStatusShipped && order.ShippedAt == nil {
		order.ShippedAt = &now
	}
	if status == models.OrderStatusDelivered && order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}
	order.RecordStatus(now, notes)

	if err := s.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}

	s.notifier.StatusChanged(*order)
	return order, nil
}

// OrderStats summarizes the ledger for the admin dashboard.
type OrderStats struct {
	TotalOrders    int64            `json:"totalOrders"`
	OrdersByStatus map[string]int64 `json:"ordersByStatus"`
	Revenue        decimal.Decimal  `json:"revenue"`
}

// Stats counts orders by status and sums amounts of orders that were not cancelled.
func (s *OrderService) Stats(ctx context.Context) (*OrderStats, error) {
	type statusCount struct {
		OrderStatus string
		Count       int64
	}
	var counts []statusCount
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("order_status, count(*) as count").
		Group("order_status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	stats := &OrderStats{OrdersByStatus: make(map[string]int64), Revenue: decimal.Zero}
	for _, c := range counts {
		stats.OrdersByStatus[c.OrderStatus] = c.Count
		stats.TotalOrders += c.Count
	}

	var amounts []decimal.Decimal
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_status <> ?", models.OrderStatusCancelled).
		Pluck("payment_amount", &amounts).Error; err != nil {
		return nil, err
	}
	for _, a := range amounts {
		stats.Revenue = stats.Revenue.Add(a)
	}

	return stats, nil
}
