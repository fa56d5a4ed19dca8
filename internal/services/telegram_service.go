package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/example/haribookstore/internal/models"
)

// TelegramService pushes new-order alerts to an admin chat. It is optional;
// an unconfigured service is a no-op.
type TelegramService struct {
	botToken    string
	adminChatID string
	client      *resty.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return newTelegramService("https://api.telegram.org", botToken, adminChatID)
}

func newTelegramService(baseURL, botToken, adminChatID string) *TelegramService {
	if botToken == "" {
		return &TelegramService{}
	}
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		client:      resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
	}
}

// Enabled reports whether alerts will actually be sent.
func (s *TelegramService) Enabled() bool {
	return s != nil && s.client != nil && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendToAdmin sends an HTML message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if !s.Enabled() {
		return nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(telegramMessage{
			ChatID:    s.adminChatID,
			Text:      text,
			ParseMode: "HTML",
		}).
		SetPathParam("token", s.botToken).
		Post("/bot{token}/sendMessage")
	if err != nil {
		// Transport errors quote the request URL, which carries the token.
		return fmt.Errorf("telegram request failed: %s",
			strings.ReplaceAll(err.Error(), s.botToken, "<redacted>"))
	}
	if resp.IsError() {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode())
	}

	return nil
}

// FormatPrice formats a rupee amount with thousand separators.
func FormatPrice(amount decimal.Decimal) string {
	str := amount.StringFixed(0)
	negative := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	if negative {
		return "-₹" + result.String()
	}
	return "₹" + result.String()
}

// NotifyNewOrder alerts the admin chat about an order awaiting UTR verification.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, order models.Order) error {
	if !s.Enabled() {
		return nil
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>📋 Order:</b> %s
<b>📚 Book:</b> %s (%s)
<b>👤 Customer:</b> %s
<b>📞 Mobile:</b> %s
<b>📍 Address:</b> %s
<b>💳 UTR:</b> <code>%s</code>
<b>💰 Amount:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.ID,
		escapeHTML(order.BookDetails.BookName),
		escapeHTML(order.BookDetails.BookCode),
		escapeHTML(order.CustomerName),
		escapeHTML(order.Mobile),
		escapeHTML(order.Address.String()),
		escapeHTML(order.Payment.UTR),
		FormatPrice(order.Payment.Amount),
	)

	if err := s.SendToAdmin(ctx, strings.TrimSpace(message)); err != nil {
		slog.WarnContext(ctx, "telegram alert failed", "order_id", order.ID, "error", err)
		return err
	}
	return nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
