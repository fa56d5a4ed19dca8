package services

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/haribookstore/internal/mail"
	"github.com/example/haribookstore/internal/models"
)

const notificationTimeout = 30 * time.Second

// Notifier renders transactional emails and dispatches them. Order emails are
// best-effort: they run after the order write has committed, on a tracked
// goroutine, and failures are only logged.
type Notifier struct {
	sender     mail.Sender
	renderer   *mail.Renderer
	telegram   *TelegramService
	adminEmail string
	upiID      string
	wg         sync.WaitGroup
}

// NewNotifier constructs a Notifier. telegram may be nil.
func NewNotifier(sender mail.Sender, telegram *TelegramService, adminEmail, upiID string) (*Notifier, error) {
	renderer, err := mail.NewRenderer()
	if err != nil {
		return nil, err
	}
	return &Notifier{
		sender:     sender,
		renderer:   renderer,
		telegram:   telegram,
		adminEmail: adminEmail,
		upiID:      upiID,
	}, nil
}

// Wait blocks until every dispatched order notification has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// SendOTP delivers the signup code synchronously; the caller reports failure to the client.
func (n *Notifier) SendOTP(ctx context.Context, to, name, code string, ttl time.Duration) error {
	html, err := n.renderer.Render(mail.TemplateOTP, mail.OTPData{
		Name:          name,
		Code:          code,
		ExpiryMinutes: int(ttl / time.Minute),
	})
	if err != nil {
		return err
	}

	id, err := n.sender.Send(ctx, mail.Message{
		To:      to,
		Subject: "🔐 Your OTP Code - HariBookStore",
		HTML:    html,
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "otp email sent", "to", to, "message_id", id)
	return nil
}

// OrderPlaced alerts the admin and acknowledges the customer.
func (n *Notifier) OrderPlaced(order models.Order) {
	n.dispatch(func(ctx context.Context) {
		data := n.orderData(order)

		if n.adminEmail != "" {
			n.send(ctx, order, mail.TemplateAdminNewOrder, n.adminEmail,
				fmt.Sprintf("🛍 New Order: %s - %s", order.BookDetails.BookName, order.ID), data)
		}
		n.send(ctx, order, mail.TemplateOrderReceived, order.CustomerEmail,
			fmt.Sprintf("📚 Order Received: %s - Order #%s", order.BookDetails.BookName, order.ID), data)

		if n.telegram.Enabled() {
			_ = n.telegram.NotifyNewOrder(ctx, order)
		}
	})
}

// PaymentReviewed tells the customer whether the admin accepted the UTR.
func (n *Notifier) PaymentReviewed(order models.Order) {
	n.dispatch(func(ctx context.Context) {
		data := n.orderData(order)
		if order.OrderStatus == models.OrderStatusConfirmed {
			n.send(ctx, order, mail.TemplateOrderConfirmed, order.CustomerEmail,
				fmt.Sprintf("✅ Order Confirmed: %s - Delivery in 3 days!", order.BookDetails.BookName), data)
			return
		}
		n.send(ctx, order, mail.TemplateOrderCancelled, order.CustomerEmail,
			fmt.Sprintf("❌ Order Cancelled: %s - Payment Issue", order.BookDetails.BookName), data)
	})
}

type statusStyle struct {
	message string
	color   template.CSS
	emoji   string
}

var statusStyles = map[string]statusStyle{
	models.OrderStatusProcessing: {"Your order is being processed.", "#3b82f6", "⚙️"},
	models.OrderStatusShipped:    {"Your order has been shipped!", "#8b5cf6", "🚚"},
	models.OrderStatusDelivered:  {"Your order has been delivered!", "#22c55e", "✅"},
}

// StatusChanged emails the customer for processing, shipped and delivered.
// Other statuses send nothing.
func (n *Notifier) StatusChanged(order models.Order) bool {
	style, ok := statusStyles[order.OrderStatus]
	if !ok {
		slog.Debug("no email for order status", "order_id", order.ID, "status", order.OrderStatus)
		return false
	}

	n.dispatch(func(ctx context.Context) {
		data := n.orderData(order)
		data.StatusMessage = style.message
		data.Color = style.color
		data.Emoji = style.emoji
		n.send(ctx, order, mail.TemplateOrderStatus, order.CustomerEmail,
			fmt.Sprintf("%s Order Update: %s - %s", style.emoji, order.BookDetails.BookName, style.message), data)
	})
	return true
}

func (n *Notifier) dispatch(fn func(ctx context.Context)) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("notification panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (n *Notifier) send(ctx context.Context, order models.Order, tmpl, to, subject string, data mail.OrderData) {
	html, err := n.renderer.Render(tmpl, data)
	if err != nil {
		slog.ErrorContext(ctx, "email render failed", "template", tmpl, "order_id", order.ID, "error", err)
		return
	}

	id, err := n.sender.Send(ctx, mail.Message{To: to, Subject: subject, HTML: html})
	if err != nil {
		slog.ErrorContext(ctx, "email send failed", "template", tmpl, "order_id", order.ID, "to", to, "error", err)
		return
	}

	slog.InfoContext(ctx, "email sent", "template", tmpl, "order_id", order.ID, "to", to, "message_id", id)
}

func (n *Notifier) orderData(order models.Order) mail.OrderData {
	return mail.OrderData{
		OrderID:        order.ID.String(),
		CustomerName:   order.CustomerName,
		CustomerEmail:  order.CustomerEmail,
		Mobile:         order.Mobile,
		BookName:       order.BookDetails.BookName,
		BookCode:       order.BookDetails.BookCode,
		Price:          order.BookDetails.Price.String(),
		Amount:         order.Payment.Amount.String(),
		UTR:            order.Payment.UTR,
		UPIID:          firstNonEmpty(order.Payment.UPIID, n.upiID),
		Address:        order.Address.String(),
		AdminNotes:     order.AdminNotes,
		Status:         order.OrderStatus,
		SupportEmail:   n.adminEmail,
		DeliveryStates: strings.Join(DeliveryStates, ", "),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
