package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/haribookstore/internal/models"
	"github.com/example/haribookstore/internal/utils"
)

func validOrderInput() CreateOrderInput {
	return CreateOrderInput{
		CustomerName:  "Asha",
		CustomerEmail: "asha@x.com",
		Mobile:        "9876543210",
		Village:       "Kothapalli",
		District:      "Guntur",
		Pincode:       "522001",
		State:         "Andhra Pradesh",
		BookCode:      "HB002",
		BookName:      "Maths",
		UTR:           "123456789012",
		Amount:        decimal.NewFromInt(35),
	}
}

func TestCreateOrderPending(t *testing.T) {
	f := newFixture(t)

	order, err := f.orders.CreateOrder(context.Background(), validOrderInput())
	require.NoError(t, err)
	f.notifier.Wait()

	assert.Equal(t, models.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.Payment.VerificationStatus)
	assert.Equal(t, "Mathematics - Class 10", order.BookDetails.BookName)
	assert.True(t, order.BookDetails.Price.Equal(BookPrice))
	assert.Equal(t, "7416219267@ybl", order.Payment.UPIID)
	assert.Nil(t, order.ConfirmedAt)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.OrderStatusPending, order.StatusHistory[0].Status)

	stored, err := f.orders.GetOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "123456789012", stored.Payment.UTR)
	assert.True(t, stored.Payment.Amount.Equal(decimal.NewFromInt(35)))

	sent := f.sender.sent()
	require.Len(t, sent, 2)
	recipients := []string{sent[0].To, sent[1].To}
	assert.ElementsMatch(t, []string{"payments@haribookstore.com", "asha@x.com"}, recipients)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	missing := validOrderInput()
	missing.Mobile = " "
	_, err := f.orders.CreateOrder(ctx, missing)
	assert.ErrorIs(t, err, ErrOrderFieldsRequired)

	noAmount := validOrderInput()
	noAmount.Amount = decimal.Zero
	_, err = f.orders.CreateOrder(ctx, noAmount)
	assert.ErrorIs(t, err, ErrOrderFieldsRequired)

	state := validOrderInput()
	state.State = "Karnataka"
	_, err = f.orders.CreateOrder(ctx, state)
	assert.ErrorIs(t, err, ErrStateNotServed)

	book := validOrderInput()
	book.BookCode = "NOPE"
	_, err = f.orders.CreateOrder(ctx, book)
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	for _, amount := range []int64{1, 34, 36, 350} {
		price := validOrderInput()
		price.Amount = decimal.NewFromInt(amount)
		_, err = f.orders.CreateOrder(ctx, price)
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.True(t, strings.HasPrefix(err.Error(), "Price mismatch. Expected total: ₹35"), err.Error())
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateOrderAcceptsEveryDeliveryState(t *testing.T) {
	f := newFixture(t)

	for i, state := range DeliveryStates {
		in := validOrderInput()
		in.State = state
		in.UTR = "UTR-" + state
		_, err := f.orders.CreateOrder(context.Background(), in)
		require.NoError(t, err, "state %d", i)
	}
	f.notifier.Wait()
}

func TestCreateOrderRejectsReusedUTR(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.CreateOrder(ctx, validOrderInput())
	require.NoError(t, err)

	again := validOrderInput()
	again.CustomerEmail = "someone-else@x.com"
	_, err = f.orders.CreateOrder(ctx, again)
	assert.ErrorIs(t, err, ErrUTRUsed)
	assert.Equal(t, "UTR number already used. Please check your UTR number.", err.Error())
	f.notifier.Wait()
}

func TestConfirmOrderVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, validOrderInput())
	require.NoError(t, err)
	f.notifier.Wait()

	confirmed, err := f.orders.ConfirmOrder(ctx, order.ID.String(), "verified", "Paid via PhonePe")
	require.NoError(t, err)
	f.notifier.Wait()

	assert.Equal(t, models.OrderStatusConfirmed, confirmed.OrderStatus)
	assert.Equal(t, models.PaymentVerified, confirmed.Payment.VerificationStatus)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, "Paid via PhonePe", confirmed.AdminNotes)

	sent := f.sender.sent()
	last := sent[len(sent)-1]
	assert.Equal(t, "asha@x.com", last.To)
	assert.Contains(t, last.Subject, "Order Confirmed")
	assert.Contains(t, last.HTML, "Paid via PhonePe")
}

func TestConfirmOrderWithoutStatusCancels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, validOrderInput())
	require.NoError(t, err)
	f.notifier.Wait()

	cancelled, err := f.orders.ConfirmOrder(ctx, order.ID.String(), "", "no status")
	require.NoError(t, err)
	f.notifier.Wait()

	assert.Equal(t, models.OrderStatusCancelled, cancelled.OrderStatus)
	assert.Equal(t, models.PaymentFailed, cancelled.Payment.VerificationStatus)
	assert.Nil(t, cancelled.ConfirmedAt)

	sent := f.sender.sent()
	assert.Contains(t, sent[len(sent)-1].Subject, "Order Cancelled")
}

func TestConfirmOrderOtherValuesCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, status := range []string{"failed", "rejected", "pending"} {
		in := validOrderInput()
		in.UTR = in.UTR + string(rune('a'+i))
		order, err := f.orders.CreateOrder(ctx, in)
		require.NoError(t, err)

		_, err = f.orders.ConfirmOrder(ctx, order.ID.String(), "verified", "")
		require.NoError(t, err)

		cancelled, err := f.orders.ConfirmOrder(ctx, order.ID.String(), status, "UTR not found in statement")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.OrderStatus, status)
		assert.Equal(t, models.PaymentFailed, cancelled.Payment.VerificationStatus)
		assert.Nil(t, cancelled.ConfirmedAt)

		stored, err := f.orders.GetOrder(ctx, order.ID.String())
		require.NoError(t, err)
		assert.Nil(t, stored.ConfirmedAt)
	}
	f.notifier.Wait()

	var cancelledMails int
	for _, msg := range f.sender.sent() {
		if strings.Contains(msg.Subject, "Order Cancelled") {
			cancelledMails++
		}
	}
	assert.Equal(t, 3, cancelledMails)
}

func TestConfirmOrderNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.ConfirmOrder(context.Background(), "not-a-uuid", "verified", "")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.orders.ConfirmOrder(context.Background(), "6f1c1f4e-6a43-4c5e-9d7e-1d2b3c4d5e6f", "verified", "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatusShippedStampedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, validOrderInput())
	require.NoError(t, err)

	first, err := f.orders.UpdateStatus(ctx, order.ID.String(), "shipped", "Sent by India Post")
	require.NoError(t, err)
	require.NotNil(t, first.ShippedAt)
	shippedAt := *first.ShippedAt

	f.clock.Advance(2 * time.Hour)
	second, err := f.orders.UpdateStatus(ctx, order.ID.String(), "shipped", "")
	require.NoError(t, err)
	require.NotNil(t, second.ShippedAt)
	assert.True(t, shippedAt.Equal(*second.ShippedAt))
	assert.Equal(t, "Sent by India Post", second.AdminNotes)
	assert.Nil(t, second.DeliveredAt)

	delivered, err := f.orders.UpdateStatus(ctx, order.ID.String(), "delivered", "")
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)
	assert.True(t, delivered.DeliveredAt.Equal(f.clock.Now()))
	assert.Len(t, delivered.StatusHistory, 4)
	f.notifier.Wait()
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, validOrderInput())
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID.String(), "lost", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.orders.UpdateStatus(ctx, "6f1c1f4e-6a43-4c5e-9d7e-1d2b3c4d5e6f", "shipped", "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	f.notifier.Wait()
}

func TestUpdateStatusEmailsOnlyProgressStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, validOrderInput())
	require.NoError(t, err)
	f.notifier.Wait()
	base := len(f.sender.sent())

	for _, status := range []string{"confirmed", "pending", "cancelled"} {
		_, err := f.orders.UpdateStatus(ctx, order.ID.String(), status, "")
		require.NoError(t, err)
	}
	f.notifier.Wait()
	assert.Len(t, f.sender.sent(), base)

	for _, status := range []string{"processing", "shipped", "delivered"} {
		_, err := f.orders.UpdateStatus(ctx, order.ID.String(), status, "")
		require.NoError(t, err)
		f.notifier.Wait()
	}

	sent := f.sender.sent()
	require.Len(t, sent, base+3)
	assert.Contains(t, sent[base+2].HTML, "DELIVERED")
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, email := range []string{"a@x.com", "b@x.com", "a@x.com"} {
		in := validOrderInput()
		in.CustomerEmail = email
		in.UTR = "UTR00" + string(rune('0'+i))
		_, err := f.orders.CreateOrder(ctx, in)
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}
	f.notifier.Wait()

	all, total, err := f.orders.ListOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)

	own, total, err := f.orders.ListOrders(ctx, OrderFilter{CustomerEmail: "a@x.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, o := range own {
		assert.Equal(t, "a@x.com", o.CustomerEmail)
	}

	page, total, err := f.orders.ListOrders(ctx, OrderFilter{Page: utils.NewPagination(2, 2)})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)

	none, total, err := f.orders.ListOrders(ctx, OrderFilter{Status: models.OrderStatusShipped})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, none)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		in := validOrderInput()
		in.UTR = "UTR-STATS-" + string(rune('0'+i))
		order, err := f.orders.CreateOrder(ctx, in)
		require.NoError(t, err)
		ids = append(ids, order.ID.String())
	}
	_, err := f.orders.ConfirmOrder(ctx, ids[0], "failed", "")
	require.NoError(t, err)
	_, err = f.orders.ConfirmOrder(ctx, ids[1], "verified", "")
	require.NoError(t, err)
	f.notifier.Wait()

	stats, err := f.orders.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.OrdersByStatus[models.OrderStatusCancelled])
	assert.EqualValues(t, 1, stats.OrdersByStatus[models.OrderStatusConfirmed])
	assert.EqualValues(t, 1, stats.OrdersByStatus[models.OrderStatusPending])
	assert.True(t, stats.Revenue.Equal(decimal.NewFromInt(70)), stats.Revenue.String())
}

func TestCustomerEmailStoredLowerCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := validOrderInput()
	in.CustomerEmail = " Asha@X.com "
	order, err := f.orders.CreateOrder(ctx, in)
	require.NoError(t, err)
	f.notifier.Wait()
	assert.Equal(t, "asha@x.com", order.CustomerEmail)

	_, total, err := f.orders.ListOrders(ctx, OrderFilter{CustomerEmail: "ASHA@x.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
