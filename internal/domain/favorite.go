package domain

import "time"

// Favorite marks a product as saved by a customer.
type Favorite struct {
	ID         int64     `json:"id" db:"id"`
	CustomerID int64     `json:"customerId" db:"customer_id"`
	ProductID  int64     `json:"productId" db:"product_id"`
	Product    *Product  `json:"product,omitempty"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
