package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func checkoutCart() *Cart {
	return &Cart{
		User_id: "user-1",
		Items: []CartItem{
			{
				ID:          primitive.NewObjectID(),
				Product_id:  "latte",
				ProductName: "Latte",
				Quantity:    2,
				Size:        "medium",
				AddOns:      []AddOnSelection{{Name: "extra shot", Price: 20}},
				TotalPrice:  280,
			},
		},
		TotalAmount: 280,
	}
}

func TestNewOrderFromCart(t *testing.T) {
	tests := []struct {
		name    string
		cart    *Cart
		method  string
		address string
		wantErr error
	}{
		{"nil cart", nil, DeliveryMethodPickup, "", ErrEmptyCart},
		{"empty cart", &Cart{User_id: "user-1"}, DeliveryMethodPickup, "", ErrEmptyCart},
		{"delivery without address", checkoutCart(), DeliveryMethodDelivery, "", ErrAddressRequired},
		{"delivery with blank address", checkoutCart(), DeliveryMethodDelivery, "   ", ErrAddressRequired},
		{"pickup", checkoutCart(), DeliveryMethodPickup, "", nil},
		{"delivery with address", checkoutCart(), DeliveryMethodDelivery, "12 Ayala Ave", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrderFromCart(tt.cart, 1001, tt.method, tt.address)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, int64(1001), order.OrderNumber)
			assert.Equal(t, "user-1", order.User_id)
			assert.Equal(t, StatusPending, order.Status)
			assert.Equal(t, "cod", order.PaymentMethod)
			assert.Equal(t, 280.0, order.TotalAmount)
			assert.NotEmpty(t, order.Order_id)

			require.Len(t, order.StatusHistory, 1)
			assert.Equal(t, StatusPending, order.StatusHistory[0].Status)

			if tt.method == DeliveryMethodDelivery {
				assert.Equal(t, DeliveryFee, order.DeliveryFee)
				assert.Equal(t, "12 Ayala Ave", order.DeliveryAddress)
			} else {
				assert.Zero(t, order.DeliveryFee)
				assert.Empty(t, order.DeliveryAddress)
			}
		})
	}
}

func TestNewOrderFromCartRejectsUnknownMethod(t *testing.T) {
	_, err := NewOrderFromCart(checkoutCart(), 1001, "courier", "")
	assert.Error(t, err)
}

// Once placed, an order is a snapshot: editing the cart or the catalog prices
// afterwards must not change what the customer agreed to pay.
func TestNewOrderFromCartSnapshotsLines(t *testing.T) {
	cart := checkoutCart()
	order, err := NewOrderFromCart(cart, 1002, DeliveryMethodPickup, "")
	require.NoError(t, err)

	cart.Items[0].TotalPrice = 999
	cart.Items[0].AddOns[0].Price = 500
	cart.TotalAmount = 999

	assert.Equal(t, 280.0, order.TotalAmount)
	assert.Equal(t, 280.0, order.Items[0].TotalPrice)
	assert.Equal(t, 20.0, order.Items[0].AddOns[0].Price)
}

// Cancellation must only ever match the caller's own order, and only while it
// is still pending.
func TestPendingCancelFilter(t *testing.T) {
	filter := PendingCancelFilter("order-1", "user-1")

	assert.Equal(t, "order-1", filter["order_id"])
	assert.Equal(t, "user-1", filter["user_id"])
	assert.Equal(t, StatusPending, filter["status"])
}

// A status write is pinned to the status the transition was validated
// against, so a concurrent transition misses instead of being overwritten.
func TestStatusUpdateFilter(t *testing.T) {
	filter := StatusUpdateFilter("order-1", StatusConfirmed)

	assert.Equal(t, "order-1", filter["order_id"])
	assert.Equal(t, StatusConfirmed, filter["status"])
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{
		StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
		StatusDelivered, StatusCompleted, StatusCancelled,
	} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("shipped"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("PENDING"))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"confirmed to preparing", StatusConfirmed, StatusPreparing, true},
		{"skip forward", StatusPending, StatusReady, true},
		{"delivered to completed", StatusDelivered, StatusCompleted, true},
		{"cancel from pending", StatusPending, StatusCancelled, true},
		{"cancel from confirmed", StatusConfirmed, StatusCancelled, false},
		{"cancel from preparing", StatusPreparing, StatusCancelled, false},
		{"backwards", StatusReady, StatusConfirmed, false},
		{"no-op transition", StatusPreparing, StatusPreparing, false},
		{"out of completed", StatusCompleted, StatusPending, false},
		{"out of cancelled", StatusCancelled, StatusConfirmed, false},
		{"unknown target", StatusPending, "shipped", false},
		{"unknown source", "shipped", StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestBuildSalesReport(t *testing.T) {
	day1 := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC)

	orders := []Order{
		{
			TotalAmount: 280,
			Created_at:  day1,
			Items: []CartItem{
				{Product_id: "latte", ProductName: "Latte", Quantity: 2, TotalPrice: 280},
			},
		},
		{
			TotalAmount: 430,
			Created_at:  day1,
			Items: []CartItem{
				{Product_id: "latte", ProductName: "Latte", Quantity: 1, TotalPrice: 140},
				{Product_id: "croissant", ProductName: "Croissant", Quantity: 2, TotalPrice: 290},
			},
		},
		{
			TotalAmount: 100,
			Created_at:  day2,
			Items: []CartItem{
				{Product_id: "tea", ProductName: "Black Tea", Quantity: 1, TotalPrice: 100},
			},
		},
	}

	report := BuildSalesReport(orders)

	assert.Equal(t, 810.0, report.TotalSales)
	assert.Equal(t, 3, report.OrderCount)

	require.Contains(t, report.SalesByProduct, "latte")
	assert.Equal(t, 3, report.SalesByProduct["latte"].Quantity)
	assert.Equal(t, 420.0, report.SalesByProduct["latte"].Revenue)
	assert.Equal(t, "Latte", report.SalesByProduct["latte"].ProductName)

	assert.Equal(t, 710.0, report.DailySales["2025-03-10"])
	assert.Equal(t, 100.0, report.DailySales["2025-03-11"])
}

func TestBuildSalesReportEmpty(t *testing.T) {
	report := BuildSalesReport(nil)
	assert.Zero(t, report.TotalSales)
	assert.Zero(t, report.OrderCount)
	assert.Empty(t, report.SalesByProduct)
	assert.Empty(t, report.DailySales)
}
