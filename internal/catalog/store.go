// Package catalog serves the product catalog and stock levels the
// storefront cart reads from.
package catalog

import "context"

type Product struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

type Store interface {
	Ping(ctx context.Context) error
	ListSortedByID(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int) (Product, bool, error)
	GetStock(ctx context.Context, id int) (Stock, bool, error)
}

func NewStore() Store {
	return NewMemStore(SeedProducts(), SeedStock())
}

const imageBase = "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/"

func SeedProducts() []Product {
	return []Product{
		{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: imageBase + "tenis1.jpg"},
		{ID: 2, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: imageBase + "tenis2.jpg"},
		{ID: 3, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: imageBase + "tenis3.jpg"},
		{ID: 4, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: imageBase + "tenis2.jpg"},
		{ID: 5, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: imageBase + "tenis2.jpg"},
		{ID: 6, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: imageBase + "tenis3.jpg"},
	}
}

func SeedStock() []Stock {
	return []Stock{
		{ID: 1, Amount: 3},
		{ID: 2, Amount: 5},
		{ID: 3, Amount: 2},
		{ID: 4, Amount: 1},
		{ID: 5, Amount: 5},
		{ID: 6, Amount: 10},
	}
}
