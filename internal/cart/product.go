package cart

import (
	"encoding/json"
	"fmt"
)

type Product struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int     `json:"amount"`
}

type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

type UpdateProductAmount struct {
	ProductID int `json:"productId"`
	Amount    int `json:"amount"`
}

// EncodeCart serializes the cart the way it is kept in the persistence slot.
// A nil cart is written as an empty array.
func EncodeCart(items []Product) ([]byte, error) {
	if items == nil {
		items = []Product{}
	}
	return json.Marshal(items)
}

// DecodeCart parses a persisted cart. Entries with a non-positive amount or
// a repeated id violate the cart invariants and are rejected.
func DecodeCart(b []byte) ([]Product, error) {
	var items []Product
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	seen := make(map[int]struct{}, len(items))
	for _, p := range items {
		if p.Amount < 1 {
			return nil, fmt.Errorf("decode cart: product %d has amount %d", p.ID, p.Amount)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("decode cart: duplicate product %d", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	if items == nil {
		items = []Product{}
	}
	return items, nil
}
