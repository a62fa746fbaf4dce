package models

import (
	"time"
)

// User is the persisted aggregate: identity, credentials, the refresh-token
// allowlist, the cart and the full order history live in one document and
// are always loaded and saved together.
type User struct {
	ID            string    `bson:"_id" json:"id"`
	Email         string    `bson:"email" json:"email"`
	Password      string    `bson:"password" json:"-"`
	Name          string    `bson:"name" json:"name"`
	RefreshTokens []string  `bson:"refresh_tokens" json:"-"`
	Cart          Cart      `bson:"cart" json:"cart"`
	Orders        []Order   `bson:"orders" json:"orders"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

type Cart struct {
	Items []CartItem `bson:"items" json:"items"`
}

// CartItem snapshots the catalog record at add time; price does not track
// later catalog changes.
type CartItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	ImageURL  string  `bson:"image_url" json:"image_url"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

type Order struct {
	ID             string      `bson:"order_id" json:"order_id"`
	Items          []OrderItem `bson:"items" json:"items"`
	ShippingMethod string      `bson:"shipping_method" json:"shipping_method"`
	ShippingFee    float64     `bson:"shipping_fee" json:"shipping_fee"`
	Coupon         *Coupon     `bson:"coupon,omitempty" json:"coupon,omitempty"`
	TotalAmount    float64     `bson:"total_amount" json:"total_amount"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
	Review         *Review     `bson:"review,omitempty" json:"review,omitempty"`
}

type OrderItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	ImageURL  string  `bson:"image_url" json:"image_url"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
}

type Coupon struct {
	Code     string  `bson:"code" json:"code"`
	Discount float64 `bson:"discount" json:"discount"`
}

// Review images are stored inline as bson binary and addressed by position.
type Review struct {
	Comment string   `bson:"comment" json:"comment"`
	Rating  int      `bson:"rating" json:"rating"`
	Images  [][]byte `bson:"images,omitempty" json:"-"`
}

// IsEmpty reports whether the review carries no content yet. Attachment is
// refused only for non-empty reviews.
func (r *Review) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Comment == "" && r.Rating == 0 && len(r.Images) == 0
}

// NewUser builds a user with an explicitly empty cart so no downstream code
// needs a nil fallback.
func NewUser(id, email, hashedPassword, name string) *User {
	now := time.Now().UTC()
	return &User{
		ID:            id,
		Email:         email,
		Password:      hashedPassword,
		Name:          name,
		RefreshTokens: []string{},
		Cart:          Cart{Items: []CartItem{}},
		Orders:        []Order{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// FindOrder returns a pointer into the user's order list, or nil.
func (u *User) FindOrder(orderID string) *Order {
	for i := range u.Orders {
		if u.Orders[i].ID == orderID {
			return &u.Orders[i]
		}
	}
	return nil
}

// Subtotal is the item-only portion of the order total.
func (o *Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}
