package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrAddressRequired = errors.New("delivery address is required for delivery orders")
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusDelivered = "delivered"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	DeliveryMethodDelivery = "delivery"
	DeliveryMethodPickup   = "pickup"

	// DeliveryFee is the flat surcharge applied to delivery orders.
	DeliveryFee = 50.0

	// CancellationWindow is advisory: the client may offer self-cancellation
	// for this long after checkout. The server only ever gates on the order
	// still being pending.
	CancellationWindow = 10
)

// statusRank orders the fulfillment chain. Cancelled sits outside the chain.
var statusRank = map[string]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusDelivered: 4,
	StatusCompleted: 5,
}

type StatusEntry struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Order_id        string             `bson:"order_id" json:"order_id"`
	OrderNumber     int64              `bson:"order_number" json:"order_number"`
	User_id         string             `bson:"user_id" json:"user_id"`
	Items           []CartItem         `bson:"items" json:"items"`
	DeliveryMethod  string             `bson:"delivery_method" json:"delivery_method"`
	DeliveryAddress string             `bson:"delivery_address,omitempty" json:"delivery_address,omitempty"`
	PaymentMethod   string             `bson:"payment_method" json:"payment_method"`
	TotalAmount     float64            `bson:"total_amount" json:"total_amount"`
	DeliveryFee     float64            `bson:"delivery_fee" json:"delivery_fee"`
	Status          string             `bson:"status" json:"status"`
	StatusHistory   []StatusEntry      `bson:"status_history" json:"status_history"`
	Created_at      time.Time          `bson:"created_at" json:"created_at"`
	Updated_at      time.Time          `bson:"updated_at" json:"updated_at"`
}

// NewOrderFromCart snapshots a cart into a new pending order. Lines are
// deep-copied, so later cart or catalog edits never reach the order. Payment
// is cash on delivery only.
func NewOrderFromCart(cart *Cart, orderNumber int64, deliveryMethod, deliveryAddress string) (Order, error) {
	if cart == nil || len(cart.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	switch deliveryMethod {
	case DeliveryMethodDelivery:
		if strings.TrimSpace(deliveryAddress) == "" {
			return Order{}, ErrAddressRequired
		}
	case DeliveryMethodPickup:
		deliveryAddress = ""
	default:
		return Order{}, fmt.Errorf("invalid delivery method %q", deliveryMethod)
	}

	fee := 0.0
	if deliveryMethod == DeliveryMethodDelivery {
		fee = DeliveryFee
	}

	items := make([]CartItem, len(cart.Items))
	copy(items, cart.Items)
	for i := range items {
		items[i].AddOns = append([]AddOnSelection(nil), items[i].AddOns...)
	}

	now := time.Now()
	order := Order{
		ID:              primitive.NewObjectID(),
		OrderNumber:     orderNumber,
		User_id:         cart.User_id,
		Items:           items,
		DeliveryMethod:  deliveryMethod,
		DeliveryAddress: deliveryAddress,
		PaymentMethod:   "cod",
		TotalAmount:     cart.TotalAmount,
		DeliveryFee:     fee,
		Status:          StatusPending,
		StatusHistory: []StatusEntry{
			{Status: StatusPending, Timestamp: now},
		},
		Created_at: now,
		Updated_at: now,
	}
	order.Order_id = order.ID.Hex()
	return order, nil
}

// PendingCancelFilter matches an order only when the caller owns it and it is
// still pending, so the permission check and the cancel write are a single
// atomic document match.
func PendingCancelFilter(orderID, userID string) bson.M {
	return bson.M{"order_id": orderID, "user_id": userID, "status": StatusPending}
}

// StatusUpdateFilter pins a status write to the status it was validated
// against. A concurrent transition makes the filter miss instead of
// overwriting it.
func StatusUpdateFilter(orderID, fromStatus string) bson.M {
	return bson.M{"order_id": orderID, "status": fromStatus}
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// CanTransition enforces the order state machine: cancelled and completed are
// terminal, cancelled is reachable only from pending, and fulfillment moves
// only forward along the chain (skipping steps is allowed).
func CanTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if from == StatusCancelled || from == StatusCompleted {
		return false
	}
	if to == StatusCancelled {
		return from == StatusPending
	}
	return statusRank[to] > statusRank[from]
}

// FulfilledStatuses is the set of statuses counted as completed sales.
var FulfilledStatuses = []string{StatusCompleted, StatusDelivered}

type ProductSales struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

type SalesReport struct {
	TotalSales     float64                 `json:"total_sales"`
	OrderCount     int                     `json:"order_count"`
	SalesByProduct map[string]ProductSales `json:"sales_by_product"`
	DailySales     map[string]float64      `json:"daily_sales"`
}

// BuildSalesReport aggregates fulfilled orders into revenue totals,
// per-product quantity/revenue, and per-day revenue. Pure read-side
// computation; callers filter the input set by status and date range.
func BuildSalesReport(orders []Order) SalesReport {
	report := SalesReport{
		SalesByProduct: map[string]ProductSales{},
		DailySales:     map[string]float64{},
	}

	for _, order := range orders {
		report.TotalSales += order.TotalAmount
		report.OrderCount++

		for _, item := range order.Items {
			s := report.SalesByProduct[item.Product_id]
			s.ProductName = item.ProductName
			s.Quantity += item.Quantity
			s.Revenue += item.TotalPrice
			report.SalesByProduct[item.Product_id] = s
		}

		day := order.Created_at.UTC().Format("2006-01-02")
		report.DailySales[day] += order.TotalAmount
	}

	return report
}
