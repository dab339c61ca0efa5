package domain

import (
	"time"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionRent TransactionType = "rent"
)

// Availability maps transaction type -> size -> remaining stock.
// A missing type or size entry means the product is unconstrained
// for that combination.
type Availability map[TransactionType]map[string]int

type Product struct {
	ProductID    string       `dynamodbav:"product_id"   json:"product_id"`
	Name         string       `dynamodbav:"name"         json:"name"`
	Brand        string       `dynamodbav:"brand"        json:"brand"`
	Category     string       `dynamodbav:"category"     json:"category"`
	Image        string       `dynamodbav:"image"        json:"image,omitempty"`
	BuyPrice     float64      `dynamodbav:"buy_price"    json:"buy_price"`
	RentPrice    float64      `dynamodbav:"rent_price"   json:"rent_price"`
	Sizes        []string     `dynamodbav:"sizes"        json:"sizes"`
	IsNew        bool         `dynamodbav:"is_new"       json:"is_new,omitempty"`
	IsOnSale     bool         `dynamodbav:"is_on_sale"   json:"is_on_sale,omitempty"`
	Availability Availability `dynamodbav:"availability" json:"availability,omitempty"`
	CreatedAt    time.Time    `dynamodbav:"created_at"   json:"created_at"`
	UpdatedAt    time.Time    `dynamodbav:"updated_at"   json:"updated_at"`
}

// HasSize reports whether size is one of the product's valid sizes.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// Available returns the remaining stock for a type/size combination.
// constrained is false when the product carries no availability record
// for that combination, in which case the product is treated as always
// available.
func (p *Product) Available(txType TransactionType, size string) (count int, constrained bool) {
	if p.Availability == nil {
		return 0, false
	}
	bySize, ok := p.Availability[txType]
	if !ok {
		return 0, false
	}
	count, ok = bySize[size]
	if !ok {
		return 0, false
	}
	return count, true
}

type CreateProductRequest struct {
	ProductID    string       `json:"product_id" binding:"required"`
	Name         string       `json:"name"       binding:"required"`
	Brand        string       `json:"brand"      binding:"required"`
	Category     string       `json:"category"   binding:"required"`
	Image        string       `json:"image"`
	BuyPrice     float64      `json:"buy_price"  binding:"required"`
	RentPrice    float64      `json:"rent_price" binding:"required"`
	Sizes        []string     `json:"sizes"      binding:"required,min=1"`
	IsNew        bool         `json:"is_new"`
	IsOnSale     bool         `json:"is_on_sale"`
	Availability Availability `json:"availability"`
}
