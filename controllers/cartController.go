package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cannotCSharp4Real/make-coffee-ph/helper"
	middleware "github.com/cannotCSharp4Real/make-coffee-ph/middlewares"
	"github.com/cannotCSharp4Real/make-coffee-ph/models"
)

type CartController struct {
	carts    *mongo.Collection
	products *mongo.Collection
	log      *slog.Logger
}

func NewCartController(db *mongo.Database, log *slog.Logger) *CartController {
	return &CartController{
		carts:    db.Collection("carts"),
		products: db.Collection("products"),
		log:      log,
	}
}

// ownerFilter builds the cart query for the caller: authenticated user when
// present, guest cookie otherwise.
func ownerFilter(r *http.Request) bson.M {
	if uid := middleware.CallerID(r); uid != "" {
		return bson.M{"user_id": uid}
	}
	return bson.M{"guest_id": middleware.GuestID(r)}
}

// newOwnedCart synthesizes an empty cart for the caller. Guest carts carry
// a 7-day expiry.
func newOwnedCart(r *http.Request) models.Cart {
	cart := models.Cart{
		Items:      []models.CartItem{},
		Created_at: time.Now(),
		Updated_at: time.Now(),
	}
	if uid := middleware.CallerID(r); uid != "" {
		cart.User_id = uid
	} else {
		cart.Guest_id = middleware.GuestID(r)
		expires := time.Now().Add(models.GuestCartTTL)
		cart.ExpiresAt = &expires
	}
	return cart
}

// GetCart returns the caller's cart, or an empty synthesized one. The empty
// cart is not persisted until the first mutation.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var cart models.Cart
	err := cc.carts.FindOne(ctx, ownerFilter(r)).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		cart = newOwnedCart(r)
	} else if err != nil {
		cc.log.Error("error fetching cart", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error fetching cart")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Cart retrieved successfully", cart)
}

type addItemRequest struct {
	ProductID string   `json:"product_id" validate:"required"`
	Quantity  int      `json:"quantity" validate:"required,gte=1"`
	Size      string   `json:"size"`
	AddOns    []string `json:"add_ons"`
}

// AddItem validates the product and selection, prices the line, and appends
// or merges it into the caller's cart.
func (cc *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		helper.RespondValidation(w, "Invalid cart item", err)
		return
	}

	var product models.Product
	err := cc.products.FindOne(ctx, bson.M{"product_id": req.ProductID}).Decode(&product)
	if err != nil {
		helper.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}
	if !product.Available {
		helper.RespondError(w, http.StatusBadRequest, "Product is not available")
		return
	}

	if product.Type == models.TypeFood && req.Size != "" {
		helper.RespondError(w, http.StatusBadRequest, "Food products do not take a size")
		return
	}

	unitPrice, err := product.UnitPrice(req.Size)
	if err != nil {
		helper.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Add-on prices are captured at add time.
	selections := []models.AddOnSelection{}
	for _, name := range req.AddOns {
		addOn, ok := product.FindAddOn(name)
		if !ok {
			helper.RespondError(w, http.StatusBadRequest, "Invalid add-on: "+name)
			return
		}
		selections = append(selections, models.AddOnSelection{Name: addOn.Name, Price: addOn.Price})
	}

	item := models.CartItem{
		ID:          primitive.NewObjectID(),
		Product_id:  product.Product_id,
		ProductName: *product.Name,
		Quantity:    req.Quantity,
		Size:        req.Size,
		AddOns:      selections,
		TotalPrice:  models.LineTotal(unitPrice, selections, req.Quantity),
	}

	cart, err := cc.loadOrCreate(ctx, r)
	if err != nil {
		cc.log.Error("error fetching cart", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error fetching cart")
		return
	}

	cart.UpsertItem(item)
	if err := cc.saveItems(ctx, cart); err != nil {
		cc.log.Error("error saving cart", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error saving cart")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Item added to cart", cart)
}

type updateItemRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateItem changes a line's quantity. The unit price is re-derived from
// the current product price plus the line's captured add-on prices, never
// from the stored total, so repeated updates cannot drift.
func (cc *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		helper.RespondValidation(w, "Invalid cart update", err)
		return
	}

	itemID, err := primitive.ObjectIDFromHex(req.ItemID)
	if err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	var cart models.Cart
	if err := cc.carts.FindOne(ctx, ownerFilter(r)).Decode(&cart); err != nil {
		helper.RespondError(w, http.StatusNotFound, "Cart not found")
		return
	}

	item := cart.FindItem(itemID)
	if item == nil {
		helper.RespondError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	var product models.Product
	if err := cc.products.FindOne(ctx, bson.M{"product_id": item.Product_id}).Decode(&product); err != nil {
		helper.RespondError(w, http.StatusNotFound, "Product no longer exists")
		return
	}

	unitPrice, err := product.UnitPrice(item.Size)
	if err != nil {
		helper.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item.Quantity = req.Quantity
	item.TotalPrice = models.LineTotal(unitPrice, item.AddOns, req.Quantity)
	cart.Recompute()

	if err := cc.saveItems(ctx, &cart); err != nil {
		cc.log.Error("error saving cart", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error saving cart")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Cart updated successfully", cart)
}

func (cc *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	itemID, err := primitive.ObjectIDFromHex(mux.Vars(r)["item_id"])
	if err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid item id")
		return
	}

	var cart models.Cart
	if err := cc.carts.FindOne(ctx, ownerFilter(r)).Decode(&cart); err != nil {
		helper.RespondError(w, http.StatusNotFound, "Cart not found")
		return
	}

	if !cart.RemoveItem(itemID) {
		helper.RespondError(w, http.StatusNotFound, "Cart item not found")
		return
	}

	if err := cc.saveItems(ctx, &cart); err != nil {
		cc.log.Error("error saving cart", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error saving cart")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Item removed from cart", cart)
}

// loadOrCreate returns the caller's persisted cart, inserting a fresh one on
// first mutation.
func (cc *CartController) loadOrCreate(ctx context.Context, r *http.Request) (*models.Cart, error) {
	var cart models.Cart
	err := cc.carts.FindOne(ctx, ownerFilter(r)).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		cart = newOwnedCart(r)
		cart.ID = primitive.NewObjectID()
		if _, err := cc.carts.InsertOne(ctx, cart); err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// saveItems persists lines and total in one document update. Guest cart
// expiry is refreshed on every mutation. Concurrent mutations to the same
// cart are last-writer-wins at the document level.
func (cc *CartController) saveItems(ctx context.Context, cart *models.Cart) error {
	set := bson.M{
		"items":        cart.Items,
		"total_amount": cart.TotalAmount,
		"updated_at":   time.Now(),
	}
	if cart.Guest_id != "" {
		set["expires_at"] = time.Now().Add(models.GuestCartTTL)
	}
	_, err := cc.carts.UpdateOne(ctx, bson.M{"_id": cart.ID}, bson.M{"$set": set})
	return err
}
