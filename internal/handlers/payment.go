package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/haribookstore/internal/middleware"
	"github.com/example/haribookstore/internal/models"
	"github.com/example/haribookstore/internal/services"
	"github.com/example/haribookstore/internal/utils"
)

// PaymentHandler exposes the UPI order workflow.
type PaymentHandler struct {
	orders *services.OrderService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(orders *services.OrderService) *PaymentHandler {
	return &PaymentHandler{orders: orders}
}

type createOrderRequest struct {
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	Mobile        string      `json:"mobile"`
	Village       string      `json:"village"`
	District      string      `json:"district"`
	Pincode       string      `json:"pincode"`
	State         string      `json:"state"`
	BookCode      string      `json:"bookCode"`
	BookName      string      `json:"bookName"`
	UTR           string      `json:"utr"`
	Amount        orderAmount `json:"amount"`
}

var errAmountNotNumber = errors.New("amount must be a JSON number")

// orderAmount accepts only numeric JSON; "35" as a string is rejected.
type orderAmount struct {
	decimal.Decimal
}

func (a *orderAmount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return errAmountNotNumber
	}
	return a.Decimal.UnmarshalJSON(b)
}

type confirmOrderRequest struct {
	VerificationStatus string `json:"verificationStatus"`
	AdminNotes         string `json:"adminNotes"`
}

type updateStatusRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"adminNotes"`
}

// CreateOrder records a UPI payment submission as a pending order. Customers
// always order under their own account email; admins may order for anyone.
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		if errors.Is(err, errAmountNotNumber) {
			return fiber.NewError(fiber.StatusBadRequest, "Amount must be a number")
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if claims.Role != models.RoleAdmin {
		req.CustomerEmail = claims.Email
	}

	order, err := h.orders.CreateOrder(c.UserContext(), services.CreateOrderInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Mobile:        req.Mobile,
		Village:       req.Village,
		District:      req.District,
		Pincode:       req.Pincode,
		State:         req.State,
		BookCode:      req.BookCode,
		BookName:      req.BookName,
		UTR:           req.UTR,
		Amount:        req.Amount.Decimal,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order placed successfully! We will verify your payment and confirm within 24 hours.",
		"orderId": order.ID,
		"orderDetails": fiber.Map{
			"bookName": order.BookDetails.BookName,
			"amount":   order.Payment.Amount,
			"utr":      order.Payment.UTR,
			"status":   order.OrderStatus,
		},
	})
}

// ListOrders returns every order to admins and the caller's own orders to customers.
func (h *PaymentHandler) ListOrders(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	filter := services.OrderFilter{
		Status: c.Query("status"),
		Page:   utils.ParsePagination(c),
	}
	if claims.Role != models.RoleAdmin {
		filter.CustomerEmail = claims.Email
	}

	orders, total, err := h.orders.ListOrders(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"orders":  orders,
		"total":   len(orders),
		"pagination": fiber.Map{
			"page":  filter.Page.Page,
			"limit": filter.Page.Limit,
			"total": total,
		},
	})
}

// GetOrder returns one order to an admin or to the customer who placed it.
func (h *PaymentHandler) GetOrder(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	order, err := h.orders.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	if claims.Role != models.RoleAdmin && order.CustomerEmail != utils.NormalizeEmail(claims.Email) {
		return services.ErrOrderNotFound
	}

	return c.JSON(fiber.Map{"success": true, "order": order})
}

// ConfirmOrder records the admin's verdict on the submitted UTR.
func (h *PaymentHandler) ConfirmOrder(c *fiber.Ctx) error {
	var req confirmOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.ConfirmOrder(c.UserContext(), c.Params("id"), req.VerificationStatus, req.AdminNotes)
	if err != nil {
		return err
	}

	message := "Order confirmed successfully"
	if order.OrderStatus == models.OrderStatusCancelled {
		message = "Order cancelled"
	}

	return c.JSON(fiber.Map{"success": true, "message": message, "order": order})
}

// UpdateStatus moves an order to any valid status.
func (h *PaymentHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, req.AdminNotes)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order status updated to " + order.OrderStatus,
		"order":   order,
	})
}

// Stats summarizes orders for the admin dashboard.
func (h *PaymentHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.orders.Stats(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": stats})
}
