package domain

import (
	"strings"
	"time"
)

const (
	ProductNameMaxLength        = 255
	ProductDescriptionMaxLength = 5000
)

// Product represents a product in the catalog.
// Rating and ReviewCount are derived from the product's reviews and are only
// written by the review store.
type Product struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	NameJa        string     `json:"nameJa" db:"name_ja"`
	Description   string     `json:"description" db:"description"`
	DescriptionJa string     `json:"descriptionJa" db:"description_ja"`
	ImageURL      string     `json:"imageUrl" db:"image_url"`
	AmazonURL     *string    `json:"amazonUrl,omitempty" db:"amazon_url"`
	RakutenURL    *string    `json:"rakutenUrl,omitempty" db:"rakuten_url"`
	YahooURL      *string    `json:"yahooUrl,omitempty" db:"yahoo_url"`
	Categories    []Category `json:"categories"`
	Rating        float64    `json:"rating" db:"rating"`
	ReviewCount   int        `json:"reviewCount" db:"review_count"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// ProductSummary is the compact product shape embedded in reviews.
type ProductSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	NameJa   string `json:"nameJa"`
	ImageURL string `json:"imageUrl"`
}

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID   *int64
	CategorySlug string
	Search       string
}

// ProductInput carries the admin-editable fields of a product.
type ProductInput struct {
	Name          string
	NameJa        string
	Description   string
	DescriptionJa string
	ImageURL      string
	AmazonURL     *string
	RakutenURL    *string
	YahooURL      *string
	CategoryIDs   []int64
}

// Normalize trims every text field, turns blank optional URLs into nil and
// removes duplicate category ids while keeping their order.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.NameJa = strings.TrimSpace(in.NameJa)
	in.Description = strings.TrimSpace(in.Description)
	in.DescriptionJa = strings.TrimSpace(in.DescriptionJa)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.AmazonURL = trimOptional(in.AmazonURL)
	in.RakutenURL = trimOptional(in.RakutenURL)
	in.YahooURL = trimOptional(in.YahooURL)

	seen := make(map[int64]bool, len(in.CategoryIDs))
	ids := make([]int64, 0, len(in.CategoryIDs))
	for _, id := range in.CategoryIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	in.CategoryIDs = ids
}

// Validate returns field-level errors keyed by the JSON field name.
// Call Normalize first.
func (in ProductInput) Validate() FieldErrors {
	errs := FieldErrors{}

	validateText(errs, "name", in.Name, ProductNameMaxLength, LanguageEnglish)
	validateText(errs, "nameJa", in.NameJa, ProductNameMaxLength, LanguageJapanese)
	validateText(errs, "description", in.Description, ProductDescriptionMaxLength, LanguageEnglish)
	validateText(errs, "descriptionJa", in.DescriptionJa, ProductDescriptionMaxLength, LanguageJapanese)

	if in.ImageURL == "" {
		errs.Add("imageUrl", MsgRequired)
	} else if !IsHTTPURL(in.ImageURL) {
		errs.Add("imageUrl", MsgInvalidURL)
	}

	optional := map[string]*string{
		"amazonUrl":  in.AmazonURL,
		"rakutenUrl": in.RakutenURL,
		"yahooUrl":   in.YahooURL,
	}
	for field, value := range optional {
		if value != nil && !IsHTTPURL(*value) {
			errs.Add(field, MsgInvalidURL)
		}
	}

	if len(in.CategoryIDs) == 0 {
		errs.Add("categoryIds", MsgCategoryRequired)
	}

	return errs
}

// Apply copies the input onto the product. Derived fields are left untouched.
func (in ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.NameJa = in.NameJa
	p.Description = in.Description
	p.DescriptionJa = in.DescriptionJa
	p.ImageURL = in.ImageURL
	p.AmazonURL = in.AmazonURL
	p.RakutenURL = in.RakutenURL
	p.YahooURL = in.YahooURL
}

// Summary returns the compact form of the product.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		NameJa:   p.NameJa,
		ImageURL: p.ImageURL,
	}
}

// HasCategory reports whether the product is linked to the category.
func (p *Product) HasCategory(categoryID int64) bool {
	for _, c := range p.Categories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
