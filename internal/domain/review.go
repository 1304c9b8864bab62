package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	RatingMin        = 1
	RatingMax        = 5
	CommentMinLength = 10
	CommentMaxLength = 1000
)

// Review is a customer's rating and comment on a product.
// At most one review exists per (product, customer) pair.
type Review struct {
	ID         int64           `json:"id" db:"id"`
	ProductID  int64           `json:"productId" db:"product_id"`
	CustomerID int64           `json:"customerId" db:"customer_id"`
	Customer   CustomerSummary `json:"customer"`
	Product    *ProductSummary `json:"product,omitempty"`
	Rating     int             `json:"rating" db:"rating"`
	Comment    string          `json:"comment" db:"comment"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`
}

// ReviewInput carries the customer-editable fields of a review.
type ReviewInput struct {
	Rating  int
	Comment string
}

// Normalize trims the comment.
func (in *ReviewInput) Normalize() {
	in.Comment = strings.TrimSpace(in.Comment)
}

// Validate returns field-level errors keyed by the JSON field name.
func (in ReviewInput) Validate() FieldErrors {
	errs := FieldErrors{}

	if in.Rating < RatingMin || in.Rating > RatingMax {
		errs.Add("rating", "Rating must be between 1 and 5")
	}

	n := utf8.RuneCountInString(in.Comment)
	switch {
	case n == 0:
		errs.Add("comment", MsgRequired)
	case n < CommentMinLength:
		errs.Add("comment", "Comment must be at least 10 characters")
	case n > CommentMaxLength:
		errs.Add("comment", "Comment must be at most 1000 characters")
	}

	return errs
}

// RatingAggregate is the derived rating state of a product.
type RatingAggregate struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}

// AggregateRatings computes the product aggregate from its review ratings.
// An empty set yields 0/0.
func AggregateRatings(ratings []int) RatingAggregate {
	if len(ratings) == 0 {
		return RatingAggregate{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return RatingAggregate{
		Rating:      RoundRating(float64(sum) / float64(len(ratings))),
		ReviewCount: len(ratings),
	}
}

// RoundRating rounds to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
