package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeFood  = "food"
	TypeDrink = "drink"
)

var drinkCategories = map[string]bool{
	"hot-coffee": true, "iced-coffee": true, "tea": true, "frappe": true, "smoothie": true,
}

var foodCategories = map[string]bool{
	"pastries": true, "sandwiches": true, "desserts": true, "snacks": true,
}

var validSizes = map[string]bool{
	"small": true, "medium": true, "large": true,
}

type SizeVariant struct {
	Size  string  `bson:"size" json:"size" validate:"required,oneof=small medium large"`
	Price float64 `bson:"price" json:"price" validate:"gte=0"`
}

type AddOn struct {
	Name      string  `bson:"name" json:"name" validate:"required"`
	Price     float64 `bson:"price" json:"price" validate:"gte=0"`
	Available bool    `bson:"available" json:"available"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Product_id   string             `bson:"product_id" json:"product_id"`
	Name         *string            `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Type         string             `bson:"type" json:"type" validate:"required,oneof=food drink"`
	Category     string             `bson:"category" json:"category" validate:"required"`
	Available    bool               `bson:"available" json:"available"`
	Price        *float64           `bson:"price,omitempty" json:"price,omitempty"`
	SizeVariants []SizeVariant      `bson:"size_variants,omitempty" json:"size_variants,omitempty"`
	AddOns       []AddOn            `bson:"add_ons,omitempty" json:"add_ons,omitempty"`
	Created_at   time.Time          `bson:"created_at" json:"created_at"`
	Updated_at   time.Time          `bson:"updated_at" json:"updated_at"`
}

// CheckShape enforces the food/drink variants of the product schema:
// food carries exactly one base price and no size variants, drinks carry
// at least one size variant and price through variants instead.
func (p *Product) CheckShape() error {
	switch p.Type {
	case TypeFood:
		if !foodCategories[p.Category] {
			return fmt.Errorf("invalid food category %q", p.Category)
		}
		if p.Price == nil {
			return errors.New("food products require a price")
		}
		if *p.Price < 0 {
			return errors.New("price must not be negative")
		}
		if len(p.SizeVariants) > 0 {
			return errors.New("food products must not carry size variants")
		}
		if len(p.AddOns) > 0 {
			return errors.New("food products must not carry add-ons")
		}
	case TypeDrink:
		if !drinkCategories[p.Category] {
			return fmt.Errorf("invalid drink category %q", p.Category)
		}
		if len(p.SizeVariants) == 0 {
			return errors.New("drinks must have at least one size variant")
		}
		seen := map[string]bool{}
		for _, v := range p.SizeVariants {
			if !validSizes[v.Size] {
				return fmt.Errorf("invalid size %q", v.Size)
			}
			if seen[v.Size] {
				return fmt.Errorf("duplicate size variant %q", v.Size)
			}
			seen[v.Size] = true
			if v.Price < 0 {
				return errors.New("variant price must not be negative")
			}
		}
	default:
		return fmt.Errorf("invalid product type %q", p.Type)
	}
	return nil
}

// UnitPrice resolves the base price for one unit: the flat price for food,
// the matching size-variant price for drinks. Drinks require a size.
func (p *Product) UnitPrice(size string) (float64, error) {
	if p.Type == TypeFood {
		if p.Price == nil {
			return 0, errors.New("product has no price")
		}
		return *p.Price, nil
	}
	for _, v := range p.SizeVariants {
		if v.Size == size {
			return v.Price, nil
		}
	}
	return 0, fmt.Errorf("invalid size %q for this product", size)
}

// FindAddOn looks up an available add-on by name.
func (p *Product) FindAddOn(name string) (AddOn, bool) {
	for _, a := range p.AddOns {
		if a.Name == name && a.Available {
			return a, true
		}
	}
	return AddOn{}, false
}
