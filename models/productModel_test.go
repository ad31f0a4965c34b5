package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestProductCheckShape(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		wantErr bool
	}{
		{
			name: "valid food",
			product: Product{
				Name: strPtr("Croissant"), Type: TypeFood, Category: "pastries",
				Price: floatPtr(95),
			},
		},
		{
			name: "valid drink",
			product: Product{
				Name: strPtr("Latte"), Type: TypeDrink, Category: "hot-coffee",
				SizeVariants: []SizeVariant{{Size: "small", Price: 100}, {Size: "medium", Price: 120}},
				AddOns:       []AddOn{{Name: "oat milk", Price: 20, Available: true}},
			},
		},
		{
			name: "food without price",
			product: Product{
				Name: strPtr("Croissant"), Type: TypeFood, Category: "pastries",
			},
			wantErr: true,
		},
		{
			name: "food with size variants",
			product: Product{
				Name: strPtr("Croissant"), Type: TypeFood, Category: "pastries",
				Price:        floatPtr(95),
				SizeVariants: []SizeVariant{{Size: "small", Price: 95}},
			},
			wantErr: true,
		},
		{
			name: "drink without size variants",
			product: Product{
				Name: strPtr("Latte"), Type: TypeDrink, Category: "hot-coffee",
			},
			wantErr: true,
		},
		{
			name: "drink with unknown size",
			product: Product{
				Name: strPtr("Latte"), Type: TypeDrink, Category: "hot-coffee",
				SizeVariants: []SizeVariant{{Size: "venti", Price: 150}},
			},
			wantErr: true,
		},
		{
			name: "drink with duplicate size",
			product: Product{
				Name: strPtr("Latte"), Type: TypeDrink, Category: "hot-coffee",
				SizeVariants: []SizeVariant{{Size: "small", Price: 100}, {Size: "small", Price: 110}},
			},
			wantErr: true,
		},
		{
			name: "category from the wrong type",
			product: Product{
				Name: strPtr("Latte"), Type: TypeDrink, Category: "pastries",
				SizeVariants: []SizeVariant{{Size: "small", Price: 100}},
			},
			wantErr: true,
		},
		{
			name: "unknown type",
			product: Product{
				Name: strPtr("Mystery"), Type: "merch", Category: "snacks",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.product.CheckShape()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductUnitPrice(t *testing.T) {
	food := Product{Type: TypeFood, Price: floatPtr(95)}
	drink := Product{
		Type: TypeDrink,
		SizeVariants: []SizeVariant{
			{Size: "small", Price: 100},
			{Size: "medium", Price: 120},
		},
	}

	// Food never requires a size.
	price, err := food.UnitPrice("")
	require.NoError(t, err)
	assert.Equal(t, 95.0, price)

	price, err = drink.UnitPrice("medium")
	require.NoError(t, err)
	assert.Equal(t, 120.0, price)

	_, err = drink.UnitPrice("")
	assert.Error(t, err)

	_, err = drink.UnitPrice("large")
	assert.Error(t, err)
}

func TestProductFindAddOn(t *testing.T) {
	drink := Product{
		Type: TypeDrink,
		AddOns: []AddOn{
			{Name: "oat milk", Price: 20, Available: true},
			{Name: "pearls", Price: 15, Available: false},
		},
	}

	addOn, ok := drink.FindAddOn("oat milk")
	require.True(t, ok)
	assert.Equal(t, 20.0, addOn.Price)

	// Unavailable add-ons cannot be selected.
	_, ok = drink.FindAddOn("pearls")
	assert.False(t, ok)

	_, ok = drink.FindAddOn("whipped cream")
	assert.False(t, ok)
}
