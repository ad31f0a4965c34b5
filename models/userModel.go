package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	User_id    string             `bson:"user_id" json:"user_id"`
	Username   *string            `bson:"username" json:"username" validate:"omitempty,min=2,max=100"`
	Email      *string            `bson:"email" json:"email" validate:"required,email"`
	Password   *string            `bson:"password" json:"password,omitempty" validate:"required,min=6"`
	Role       string             `bson:"role" json:"role"`
	Created_at time.Time          `bson:"created_at" json:"created_at"`
	Updated_at time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidRole reports whether a role string is one the system knows.
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}
