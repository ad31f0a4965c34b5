package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GuestCartTTL is how long a guest cart survives without mutations.
const GuestCartTTL = 7 * 24 * time.Hour

// AddOnSelection is an add-on chosen for a cart line, price captured at
// add time.
type AddOnSelection struct {
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

type CartItem struct {
	ID          primitive.ObjectID `bson:"_id" json:"item_id"`
	Product_id  string             `bson:"product_id" json:"product_id"`
	ProductName string             `bson:"product_name" json:"product_name"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Size        string             `bson:"size,omitempty" json:"size,omitempty"`
	AddOns      []AddOnSelection   `bson:"add_ons,omitempty" json:"add_ons,omitempty"`
	TotalPrice  float64            `bson:"total_price" json:"total_price"`
}

// Cart is owned by exactly one of User_id / Guest_id. Guest carts carry an
// expiry; user carts never expire.
type Cart struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	User_id     string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Guest_id    string             `bson:"guest_id,omitempty" json:"guest_id,omitempty"`
	Items       []CartItem         `bson:"items" json:"items"`
	TotalAmount float64            `bson:"total_amount" json:"total_amount"`
	ExpiresAt   *time.Time         `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	Created_at  time.Time          `bson:"created_at" json:"created_at"`
	Updated_at  time.Time          `bson:"updated_at" json:"updated_at"`
}

// LineTotal computes (unit base price + sum of add-on prices) × quantity.
func LineTotal(unitPrice float64, addOns []AddOnSelection, quantity int) float64 {
	perUnit := unitPrice
	for _, a := range addOns {
		perUnit += a.Price
	}
	return perUnit * float64(quantity)
}

// SameSelection reports whether two lines reference the same product, size
// and add-on set. Add-on comparison is exact (name and captured price),
// order-insensitive.
func SameSelection(a, b CartItem) bool {
	if a.Product_id != b.Product_id || a.Size != b.Size || len(a.AddOns) != len(b.AddOns) {
		return false
	}
	as := sortedAddOns(a.AddOns)
	bs := sortedAddOns(b.AddOns)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func sortedAddOns(in []AddOnSelection) []AddOnSelection {
	out := make([]AddOnSelection, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Price < out[j].Price
	})
	return out
}

// UpsertItem appends the line, or merges it into an existing line when the
// product, size and add-on set match exactly. Totals are recomputed.
func (c *Cart) UpsertItem(item CartItem) {
	for i := range c.Items {
		if SameSelection(c.Items[i], item) {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].TotalPrice += item.TotalPrice
			c.Recompute()
			return
		}
	}
	c.Items = append(c.Items, item)
	c.Recompute()
}

// FindItem returns a pointer to the line with the given id, or nil.
func (c *Cart) FindItem(itemID primitive.ObjectID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// RemoveItem deletes the line with the given id and recomputes the total.
// Returns false when no such line exists.
func (c *Cart) RemoveItem(itemID primitive.ObjectID) bool {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recompute()
			return true
		}
	}
	return false
}

// Recompute refreshes the aggregate total from the line totals. Called after
// every mutation.
func (c *Cart) Recompute() {
	total := 0.0
	for _, item := range c.Items {
		total += item.TotalPrice
	}
	c.TotalAmount = total
}

// Absorb folds another cart's lines into this one using the same exact-match
// merge rule as adding items.
func (c *Cart) Absorb(other *Cart) {
	for _, item := range other.Items {
		c.UpsertItem(item)
	}
}
