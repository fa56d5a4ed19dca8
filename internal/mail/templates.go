package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names understood by Render.
const (
	TemplateOTP            = "otp"
	TemplateAdminNewOrder  = "admin_new_order"
	TemplateOrderReceived  = "order_received"
	TemplateOrderConfirmed = "order_confirmed"
	TemplateOrderCancelled = "order_cancelled"
	TemplateOrderStatus    = "order_status"
)

// Renderer executes the embedded HTML templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses all embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("mail").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&body, name+".html", data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

// OTPData feeds the signup code email.
type OTPData struct {
	Name          string
	Code          string
	ExpiryMinutes int
}

// OrderData feeds every order email.
type OrderData struct {
	OrderID        string
	CustomerName   string
	CustomerEmail  string
	Mobile         string
	BookName       string
	BookCode       string
	Price          string
	Amount         string
	UTR            string
	UPIID          string
	Address        string
	AdminNotes     string
	Status         string
	StatusMessage  string
	Color          template.CSS
	Emoji          string
	SupportEmail   string
	DeliveryStates string
}
