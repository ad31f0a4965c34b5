package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cannotCSharp4Real/make-coffee-ph/events"
	"github.com/cannotCSharp4Real/make-coffee-ph/helper"
	middleware "github.com/cannotCSharp4Real/make-coffee-ph/middlewares"
	"github.com/cannotCSharp4Real/make-coffee-ph/models"
)

type OrderController struct {
	orders   *mongo.Collection
	carts    *mongo.Collection
	counters *mongo.Collection
	hub      *events.Hub
	tokens   *helper.TokenManager
	log      *slog.Logger
}

func NewOrderController(db *mongo.Database, hub *events.Hub, tokens *helper.TokenManager, log *slog.Logger) *OrderController {
	return &OrderController{
		orders:   db.Collection("orders"),
		carts:    db.Collection("carts"),
		counters: db.Collection("counters"),
		hub:      hub,
		tokens:   tokens,
		log:      log,
	}
}

// nextOrderNumber hands out the next sequential order number through an
// atomic increment-and-fetch on the counter document. Never read-then-write.
func (oc *OrderController) nextOrderNumber(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter models.Counter
	err := oc.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "orderNumber"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

type createOrderRequest struct {
	DeliveryMethod  string `json:"delivery_method" validate:"required,oneof=delivery pickup"`
	DeliveryAddress string `json:"delivery_address"`
}

// CreateOrder snapshots the caller's cart into an immutable order and clears
// the cart. Subsequent product price edits never touch existing orders.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid := middleware.CallerID(r)

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		helper.RespondValidation(w, "Invalid order data", err)
		return
	}
	if req.DeliveryMethod == models.DeliveryMethodDelivery && strings.TrimSpace(req.DeliveryAddress) == "" {
		helper.RespondError(w, http.StatusBadRequest, "Delivery address is required for delivery orders")
		return
	}

	var cart models.Cart
	err := oc.carts.FindOne(ctx, bson.M{"user_id": uid}).Decode(&cart)
	if err != nil || len(cart.Items) == 0 {
		helper.RespondError(w, http.StatusBadRequest, "Cart is empty or not found")
		return
	}

	orderNumber, err := oc.nextOrderNumber(ctx)
	if err != nil {
		oc.log.Error("error allocating order number", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error creating order number, please try again")
		return
	}

	order, err := models.NewOrderFromCart(&cart, orderNumber, req.DeliveryMethod, req.DeliveryAddress)
	if err != nil {
		helper.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := oc.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Counter collision; retryable by the client.
			helper.RespondError(w, http.StatusInternalServerError, "Error creating order number, please try again")
			return
		}
		oc.log.Error("order creation failed", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	// Clear, not delete: the cart document survives for reuse.
	_, err = oc.carts.UpdateOne(ctx,
		bson.M{"user_id": uid},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "total_amount": 0.0, "updated_at": time.Now()}},
	)
	if err != nil {
		oc.log.Error("cart clear failed", slog.String("user_id", uid), slog.String("error", err.Error()))
	}

	helper.RespondJSON(w, http.StatusCreated, "Order created successfully", map[string]interface{}{
		"order":               order,
		"cancellation_window": models.CancellationWindow,
	})
}

// CancelOrder transitions the caller's own pending order to cancelled. Any
// other case, including someone else's order, answers not-found.
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid := middleware.CallerID(r)
	orderId := mux.Vars(r)["order_id"]

	now := time.Now()
	filter := models.PendingCancelFilter(orderId, uid)
	update := bson.M{
		"$set": bson.M{"status": models.StatusCancelled, "updated_at": now},
		"$push": bson.M{"status_history": models.StatusEntry{
			Status:    models.StatusCancelled,
			Timestamp: now,
		}},
	}

	result, err := oc.orders.UpdateOne(ctx, filter, update)
	if err != nil {
		oc.log.Error("order cancellation failed", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error cancelling order")
		return
	}
	if result.MatchedCount == 0 {
		helper.RespondError(w, http.StatusNotFound, "Order not found or cannot be cancelled")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Order cancelled successfully", nil)
}

// GetMyOrders lists the caller's orders, newest first.
func (oc *OrderController) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid := middleware.CallerID(r)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := oc.orders.Find(ctx, bson.M{"user_id": uid}, opts)
	if err != nil {
		oc.log.Error("error retrieving orders", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error retrieving orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error decoding order data")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Orders retrieved successfully", orders)
}

// GetAllOrders is the admin view: optional status and day filters, newest
// first, paginated.
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ValidStatus(status) {
			helper.RespondError(w, http.StatusBadRequest, "Invalid order status")
			return
		}
		filter["status"] = status
	}
	if date := r.URL.Query().Get("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			helper.RespondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		filter["created_at"] = bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)}
	}

	recordPerPage, err := strconv.Atoi(r.URL.Query().Get("recordPerPage"))
	if err != nil || recordPerPage < 1 {
		recordPerPage = 10
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	startIndex := (page - 1) * recordPerPage

	totalOrders, err := oc.orders.CountDocuments(ctx, filter)
	if err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error retrieving total order count")
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(startIndex)).
		SetLimit(int64(recordPerPage))
	cursor, err := oc.orders.Find(ctx, filter, opts)
	if err != nil {
		oc.log.Error("error retrieving orders", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error retrieving orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error decoding order data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Orders retrieved successfully",
		"data":    orders,
		"pagination": map[string]interface{}{
			"current_page":     page,
			"records_per_page": recordPerPage,
			"total_orders":     totalOrders,
			"total_pages":      (totalOrders + int64(recordPerPage) - 1) / int64(recordPerPage),
		},
	})
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

// UpdateStatus is admin-only: validates the transition, appends to the
// status history, and notifies the owning user if connected.
func (oc *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	orderId := mux.Vars(r)["order_id"]

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidStatus(req.Status) {
		helper.RespondError(w, http.StatusBadRequest, "Invalid order status")
		return
	}

	var order models.Order
	err := oc.orders.FindOne(ctx, bson.M{"order_id": orderId}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		helper.RespondError(w, http.StatusNotFound, "Order not found")
		return
	} else if err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error retrieving order")
		return
	}

	if !models.CanTransition(order.Status, req.Status) {
		helper.RespondError(w, http.StatusBadRequest,
			fmt.Sprintf("Cannot transition order from %s to %s", order.Status, req.Status))
		return
	}

	now := time.Now()
	entry := models.StatusEntry{Status: req.Status, Timestamp: now, Note: req.Note}
	update := bson.M{
		"$set":  bson.M{"status": req.Status, "updated_at": now},
		"$push": bson.M{"status_history": entry},
	}

	result, err := oc.orders.UpdateOne(ctx, models.StatusUpdateFilter(orderId, order.Status), update)
	if err != nil {
		oc.log.Error("status update failed", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}
	if result.MatchedCount == 0 {
		// Someone else moved the order between our read and write.
		helper.RespondError(w, http.StatusConflict, "Order status changed concurrently, please retry")
		return
	}

	order.Status = req.Status
	order.StatusHistory = append(order.StatusHistory, entry)
	order.Updated_at = now

	// Fire-and-forget: no connected client just means the message is dropped.
	oc.hub.NotifyUser(order.User_id, events.Event{
		Type:        events.EventOrderStatus,
		OrderID:     order.Order_id,
		OrderNumber: order.OrderNumber,
		Status:      req.Status,
		Message:     fmt.Sprintf("Your order #%d status has been updated to %s", order.OrderNumber, strings.ToUpper(req.Status)),
	})

	helper.RespondJSON(w, http.StatusOK, "Order status updated successfully", order)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Events upgrades to a WebSocket carrying the caller's order status updates.
// Browsers cannot set headers on WebSocket dials, so the bearer token rides
// the query string.
func (oc *OrderController) Events(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		helper.RespondError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	claims, err := oc.tokens.ValidateToken(token)
	if err != nil {
		helper.RespondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	ch, cancel := oc.hub.SubscribeOrders(claims.Uid)

	// Reader: drains client frames and unblocks the writer on disconnect.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		cancel()
		conn.Close()
	}()

	for ev := range ch {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
