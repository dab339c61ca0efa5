package domain

import (
	"time"
)

// Identity is the authenticated caller, extracted from the bearer token
// and passed explicitly to every operation that needs authorization
// context.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserProfile holds the per-user record: wishlist product ids (set
// semantics) and the ordered list of placed order ids. Created at
// signup, never deleted.
type UserProfile struct {
	UserID       string    `dynamodbav:"user_id"       json:"user_id"`
	Email        string    `dynamodbav:"email"         json:"email"`
	Name         string    `dynamodbav:"name"          json:"name"`
	PasswordHash string    `dynamodbav:"password_hash" json:"-"`
	Wishlist     []string  `dynamodbav:"wishlist"      json:"wishlist"`
	Orders       []string  `dynamodbav:"orders"        json:"orders"`
	CreatedAt    time.Time `dynamodbav:"created_at"    json:"created_at"`
}

// InWishlist reports whether productID is already wishlisted.
func (p *UserProfile) InWishlist(productID string) bool {
	for _, id := range p.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

type SignupRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"     binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}

type WishlistRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}
