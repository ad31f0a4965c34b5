package controller

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/cannotCSharp4Real/make-coffee-ph/helper"
	middleware "github.com/cannotCSharp4Real/make-coffee-ph/middlewares"
	"github.com/cannotCSharp4Real/make-coffee-ph/models"
)

// requestTimeout bounds every storage call made on behalf of one request.
const requestTimeout = 10 * time.Second

type AuthController struct {
	users  *mongo.Collection
	carts  *mongo.Collection
	tokens *helper.TokenManager
	log    *slog.Logger
}

func NewAuthController(db *mongo.Database, tokens *helper.TokenManager, log *slog.Logger) *AuthController {
	return &AuthController{
		users:  db.Collection("users"),
		carts:  db.Collection("carts"),
		tokens: tokens,
		log:    log,
	}
}

func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(user); err != nil {
		helper.RespondValidation(w, "Invalid registration data", err)
		return
	}

	count, err := ac.users.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		ac.log.Error("error checking email", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "Error checking email")
		return
	}
	if count > 0 {
		helper.RespondError(w, http.StatusBadRequest, "User with this email already exists")
		return
	}

	password := HashPassword(*user.Password)
	user.Password = &password

	user.Role = models.RoleCustomer
	user.Created_at = time.Now()
	user.Updated_at = time.Now()
	user.ID = primitive.NewObjectID()
	user.User_id = user.ID.Hex()

	if _, err := ac.users.InsertOne(ctx, user); err != nil {
		// The unique email index catches registrations that raced past the
		// count check above.
		if mongo.IsDuplicateKeyError(err) {
			helper.RespondError(w, http.StatusBadRequest, "User with this email already exists")
			return
		}
		ac.log.Error("user creation failed", slog.String("error", err.Error()))
		helper.RespondError(w, http.StatusInternalServerError, "User creation failed")
		return
	}

	token, err := ac.tokens.GenerateToken(user.User_id, *user.Email, user.Role)
	if err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	helper.RespondJSON(w, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"user_id":  user.User_id,
			"email":    *user.Email,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var creds struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		helper.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(creds); err != nil {
		helper.RespondValidation(w, "Invalid login data", err)
		return
	}

	var foundUser models.User
	err := ac.users.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&foundUser)
	if err != nil {
		helper.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !VerifyPassword(creds.Password, *foundUser.Password) {
		helper.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := ac.tokens.GenerateToken(foundUser.User_id, *foundUser.Email, foundUser.Role)
	if err != nil {
		helper.RespondError(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	// A guest cart created before login is folded into the user's cart.
	if c, err := r.Cookie("guest_id"); err == nil && c.Value != "" {
		if err := ac.mergeGuestCart(ctx, c.Value, foundUser.User_id); err != nil {
			ac.log.Error("guest cart merge failed",
				slog.String("user_id", foundUser.User_id),
				slog.String("error", err.Error()))
		}
		http.SetCookie(w, &http.Cookie{Name: "guest_id", Value: "", Path: "/", MaxAge: -1})
	}

	helper.RespondJSON(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"user_id":  foundUser.User_id,
			"email":    *foundUser.Email,
			"username": foundUser.Username,
			"role":     foundUser.Role,
		},
	})
}

// mergeGuestCart re-owns the guest cart when the user has none; otherwise it
// folds the guest lines into the user cart and deletes the guest cart.
func (ac *AuthController) mergeGuestCart(ctx context.Context, guestID, userID string) error {
	var guestCart models.Cart
	err := ac.carts.FindOne(ctx, bson.M{"guest_id": guestID}).Decode(&guestCart)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	if err != nil {
		return err
	}

	var userCart models.Cart
	err = ac.carts.FindOne(ctx, bson.M{"user_id": userID}).Decode(&userCart)
	if err == mongo.ErrNoDocuments {
		// Cheaper than copying: assign the user and clear the guest marker.
		_, err = ac.carts.UpdateOne(ctx,
			bson.M{"_id": guestCart.ID},
			bson.M{
				"$set":   bson.M{"user_id": userID, "updated_at": time.Now()},
				"$unset": bson.M{"guest_id": "", "expires_at": ""},
			},
		)
		return err
	}
	if err != nil {
		return err
	}

	userCart.Absorb(&guestCart)
	userCart.Updated_at = time.Now()

	_, err = ac.carts.UpdateOne(ctx,
		bson.M{"_id": userCart.ID},
		bson.M{"$set": bson.M{
			"items":        userCart.Items,
			"total_amount": userCart.TotalAmount,
			"updated_at":   userCart.Updated_at,
		}},
	)
	if err != nil {
		return err
	}

	_, err = ac.carts.DeleteOne(ctx, bson.M{"_id": guestCart.ID})
	return err
}

func (ac *AuthController) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	uid := middleware.CallerID(r)

	var user models.User
	err := ac.users.FindOne(ctx, bson.M{"user_id": uid}).Decode(&user)
	if err != nil {
		helper.RespondError(w, http.StatusNotFound, "User not found")
		return
	}

	user.Password = nil
	helper.RespondJSON(w, http.StatusOK, "Profile retrieved successfully", user)
}

func HashPassword(password string) string {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		log.Panic(err)
	}
	return string(bytes)
}

func VerifyPassword(providedPassword, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(providedPassword)) == nil
}
