package controller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cannotCSharp4Real/make-coffee-ph/helper"
	"github.com/cannotCSharp4Real/make-coffee-ph/models"
)

type AdminController struct {
	users  *mongo.Collection
	orders *mongo.Collection
	log    *slog.Logger
}

func NewAdminController(db *mongo.Database, log *slog.Logger) *AdminController {
	return &AdminController{
		users:  db.Collection("users"),
		orders: db.Collection("orders"),
		log:    log,
	}
}

// GetUsers lists all users, passwords omitted, newest first.
func (ad *AdminController) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"password": 0})
	cursor, err := ad.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		ad.log.Error("error listing users", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error decoding user data")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Users retrieved successfully", users)
}

// UpdateUserRole changes a user's role between customer and admin.
func (ad *AdminController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userId := mux.Vars(r)["user_id"]

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidRole(req.Role) {
		helper.RespondError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	result, err := ad.users.UpdateOne(ctx,
		bson.M{"user_id": userId},
		bson.M{"$set": bson.M{"role": req.Role, "updated_at": time.Now()}},
	)
	if err != nil {
		ad.log.Error("role update failed", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error updating user role")
		return
	}
	if result.MatchedCount == 0 {
		helper.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "User role updated successfully", nil)
}

func (ad *AdminController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userId := mux.Vars(r)["user_id"]

	result, err := ad.users.DeleteOne(ctx, bson.M{"user_id": userId})
	if err != nil {
		ad.log.Error("user deletion failed", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error deleting user")
		return
	}
	if result.DeletedCount == 0 {
		helper.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "User deleted successfully", nil)
}

// GetSalesReport aggregates fulfilled orders (completed or delivered) in the
// requested date range. Pure read path.
func (ad *AdminController) GetSalesReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	filter := bson.M{"status": bson.M{"$in": models.FulfilledStatuses}}

	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")
	if startDate != "" && endDate != "" {
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			helper.RespondError(w, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD")
			return
		}
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			helper.RespondError(w, http.StatusBadRequest, "Invalid endDate, expected YYYY-MM-DD")
			return
		}
		filter["created_at"] = bson.M{"$gte": start, "$lt": end.AddDate(0, 0, 1)}
	}

	cursor, err := ad.orders.Find(ctx, filter)
	if err != nil {
		ad.log.Error("error fetching sales data", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error generating sales report")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error decoding order data")
		return
	}

	helper.RespondJSON(w, http.StatusOK, "Sales report generated successfully", models.BuildSalesReport(orders))
}
