package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/haribookstore/internal/config"
)

func TestRenderOTP(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	html, err := r.Render(TemplateOTP, OTPData{Name: "Hari", Code: "042917", ExpiryMinutes: 5})
	require.NoError(t, err)
	assert.Contains(t, html, `class="otp-code"`)
	assert.Contains(t, html, "042917")
	assert.Contains(t, html, "5 minutes")
}

func TestRenderOrderTemplatesEscapeNotes(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	data := OrderData{
		OrderID:      "abc",
		CustomerName: "Asha",
		BookName:     "Mathematics - Class 10",
		AdminNotes:   "<script>alert(1)</script>",
		UTR:          "123456789012",
	}
	for _, name := range []string{TemplateOrderConfirmed, TemplateOrderCancelled} {
		html, err := r.Render(name, data)
		require.NoError(t, err, name)
		assert.Contains(t, html, "Asha")
		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "&lt;script&gt;")
	}
}

func TestRenderOrderStatus(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	html, err := r.Render(TemplateOrderStatus, OrderData{
		Status:        "delivered",
		StatusMessage: "Your order has been delivered!",
		Color:         "#22c55e",
		Emoji:         "✅",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "DELIVERED")
	assert.Contains(t, html, "background: #22c55e")
	assert.Contains(t, html, "Congratulations")

	html, err = r.Render(TemplateOrderStatus, OrderData{Status: "shipped", Color: "#8b5cf6"})
	require.NoError(t, err)
	assert.NotContains(t, html, "Congratulations")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render("missing", nil)
	assert.Error(t, err)
}

func TestResendSender(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	s := NewResendSender(srv.URL, "re_test", "HariBookStore <no-reply@haribookstore.com>")
	id, err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "Hi", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "email_1", id)
	assert.Equal(t, []string{"a@x.com"}, got.To)
	assert.Equal(t, "Hi", got.Subject)
}

func TestResendSenderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"statusCode":401,"name":"validation_error","message":"API key is invalid"}`))
	}))
	defer srv.Close()

	s := NewResendSender(srv.URL, "bad", "no-reply@haribookstore.com")
	_, err := s.Send(context.Background(), Message{To: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "API key is invalid")
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("Shop <shop@x.com>", Message{To: "a@x.com", Subject: "Order ✅", HTML: "<p>x</p>"}, "<id@x.com>", testTime))
	assert.Contains(t, raw, "To: a@x.com\r\n")
	assert.Contains(t, raw, "Message-ID: <id@x.com>\r\n")
	assert.Contains(t, raw, "=?utf-8?q?")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>x</p>"))
}

func TestNewSender(t *testing.T) {
	s, err := NewSender(&config.Config{MailProvider: "log"})
	require.NoError(t, err)
	id, err := s.Send(context.Background(), Message{To: "a@x.com"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "log-"))

	s, err = NewSender(&config.Config{MailProvider: "smtp", SMTPHost: "smtp.x.com", SMTPPort: "587"})
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, s)

	_, err = NewSender(&config.Config{MailProvider: "fax"})
	assert.Error(t, err)
}

var testTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
