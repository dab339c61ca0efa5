package service

import (
	"time"

	"github.com/wearvault/storefront-service/internal/domain"
)

// SampleCatalog is the starter collection written to an empty catalog
// store on first read.
func SampleCatalog() []domain.Product {
	now := time.Now()
	products := []domain.Product{
		{
			ProductID: "1",
			Name:      "Elegant Summer Dress",
			Brand:     "Zara",
			Category:  "Dresses",
			Image:     "https://images.unsplash.com/photo-1632773003373-6645a802c154",
			BuyPrice:  89,
			RentPrice: 25,
			Sizes:     []string{"XS", "S", "M", "L"},
			IsNew:     true,
			Availability: domain.Availability{
				domain.TransactionBuy:  {"XS": 5, "S": 8, "M": 10, "L": 6},
				domain.TransactionRent: {"XS": 2, "S": 3, "M": 4, "L": 2},
			},
		},
		{
			ProductID: "2",
			Name:      "Designer Evening Gown",
			Brand:     "Gucci",
			Category:  "Dresses",
			Image:     "https://images.unsplash.com/photo-1610047402714-307d99a677db",
			BuyPrice:  450,
			RentPrice: 89,
			Sizes:     []string{"S", "M", "L"},
			IsOnSale:  true,
			Availability: domain.Availability{
				domain.TransactionBuy:  {"S": 2, "M": 3, "L": 1},
				domain.TransactionRent: {"S": 1, "M": 2, "L": 1},
			},
		},
		{
			ProductID: "3",
			Name:      "Casual Streetwear Set",
			Brand:     "Nike",
			Category:  "Tops",
			Image:     "https://images.unsplash.com/photo-1736555142217-916540c7f1b7",
			BuyPrice:  120,
			RentPrice: 30,
			Sizes:     []string{"S", "M", "L", "XL"},
			Availability: domain.Availability{
				domain.TransactionBuy:  {"S": 7, "M": 12, "L": 8, "XL": 5},
				domain.TransactionRent: {"S": 3, "M": 4, "L": 3, "XL": 2},
			},
		},
		{
			ProductID: "4",
			Name:      "Luxury Business Jacket",
			Brand:     "Prada",
			Category:  "Outerwear",
			Image:     "https://images.unsplash.com/flagged/photo-1553802922-e345434156e6",
			BuyPrice:  380,
			RentPrice: 75,
			Sizes:     []string{"XS", "S", "M", "L", "XL"},
			Availability: domain.Availability{
				domain.TransactionBuy:  {"XS": 2, "S": 4, "M": 6, "L": 4, "XL": 2},
				domain.TransactionRent: {"XS": 1, "S": 2, "M": 3, "L": 2, "XL": 1},
			},
		},
		{
			ProductID: "5",
			Name:      "Formal Business Suit",
			Brand:     "Versace",
			Category:  "Outerwear",
			Image:     "https://images.unsplash.com/photo-1655898283066-1b682b7b6736",
			BuyPrice:  520,
			RentPrice: 95,
			Sizes:     []string{"S", "M", "L", "XL"},
			Availability: domain.Availability{
				domain.TransactionBuy:  {"S": 1, "M": 2, "L": 3, "XL": 1},
				domain.TransactionRent: {"S": 1, "M": 1, "L": 2, "XL": 0},
			},
		},
		{
			ProductID: "6",
			Name:      "Summer Casual Outfit",
			Brand:     "H&M",
			Category:  "Tops",
			Image:     "https://images.unsplash.com/photo-1586024452802-86e0d084a4f9",
			BuyPrice:  65,
			RentPrice: 18,
			Sizes:     []string{"XS", "S", "M", "L"},
			IsNew:     true,
			Availability: domain.Availability{
				domain.TransactionBuy:  {"XS": 6, "S": 10, "M": 12, "L": 8},
				domain.TransactionRent: {"XS": 2, "S": 4, "M": 5, "L": 3},
			},
		},
	}

	for i := range products {
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
	}
	return products
}
