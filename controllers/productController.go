package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cannotCSharp4Real/make-coffee-ph/events"
	"github.com/cannotCSharp4Real/make-coffee-ph/helper"
	"github.com/cannotCSharp4Real/make-coffee-ph/models"
)

var validate = validator.New()

type ProductController struct {
	products *mongo.Collection
	hub      *events.Hub
	log      *slog.Logger
}

func NewProductController(db *mongo.Database, hub *events.Hub, log *slog.Logger) *ProductController {
	return &ProductController{
		products: db.Collection("products"),
		hub:      hub,
		log:      log,
	}
}

// GetProducts lists the catalog with optional type/category/available filters.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter := bson.M{}
	if t := r.URL.Query().Get("type"); t != "" {
		filter["type"] = t
	}
	if c := r.URL.Query().Get("category"); c != "" {
		filter["category"] = c
	}
	if a := r.URL.Query().Get("available"); a != "" {
		filter["available"] = a == "true"
	}

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := pc.products.Find(ctx, filter, opts)
	if err != nil {
		pc.log.Error("error retrieving products", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error retrieving products")
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error decoding product data")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Products retrieved successfully", products)
}

func (pc *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	productId := mux.Vars(r)["product_id"]

	var product models.Product
	err := pc.products.FindOne(ctx, bson.M{"product_id": productId}).Decode(&product)
	if err != nil {
		helper.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Product retrieved successfully", product)
}

func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(product); err != nil {
		helper.RespondValidation(w, "Invalid product data", err)
		return
	}
	if err := product.CheckShape(); err != nil {
		helper.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product.Created_at = time.Now()
	product.Updated_at = time.Now()
	product.ID = primitive.NewObjectID()
	product.Product_id = product.ID.Hex()

	if _, err := pc.products.InsertOne(ctx, product); err != nil {
		pc.log.Error("product creation failed", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Product creation failed")
		return
	}

	pc.hub.BroadcastCatalog()
	helper.RespondJSON(w, http.StatusCreated, "Product created successfully", product)
}

func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	productId := mux.Vars(r)["product_id"]

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(product); err != nil {
		helper.RespondValidation(w, "Invalid product data", err)
		return
	}
	if err := product.CheckShape(); err != nil {
		helper.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product.Updated_at = time.Now()
	update := bson.M{"$set": bson.M{
		"name":          product.Name,
		"type":          product.Type,
		"category":      product.Category,
		"available":     product.Available,
		"price":         product.Price,
		"size_variants": product.SizeVariants,
		"add_ons":       product.AddOns,
		"updated_at":    product.Updated_at,
	}}

	result, err := pc.products.UpdateOne(ctx, bson.M{"product_id": productId}, update)
	if err != nil {
		pc.log.Error("product update failed", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Product update failed")
		return
	}
	if result.MatchedCount == 0 {
		helper.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	var updated models.Product
	if err := pc.products.FindOne(ctx, bson.M{"product_id": productId}).Decode(&updated); err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error retrieving updated product")
		return
	}

	pc.hub.BroadcastCatalog()
	helper.RespondJSON(w, http.StatusOK, "Product updated successfully", updated)
}

func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	productId := mux.Vars(r)["product_id"]

	result, err := pc.products.DeleteOne(ctx, bson.M{"product_id": productId})
	if err != nil {
		pc.log.Error("product deletion failed", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error deleting product")
		return
	}
	if result.DeletedCount == 0 {
		helper.RespondError(w, http.StatusNotFound, "Product not found")
		return
	}

	pc.hub.BroadcastCatalog()
	helper.RespondJSON(w, http.StatusOK, "Product deleted successfully", nil)
}

// Events streams catalog-change and keep-alive events over SSE. Clients
// re-fetch the catalog on any change event; the stream carries no deltas.
func (pc *ProductController) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		helper.RespondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := pc.hub.SubscribeCatalog()
	defer cancel()

	writeSSE(w, events.Event{Type: events.EventConnected, Timestamp: time.Now().UnixMilli()})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			if err := writeSSE(w, ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
