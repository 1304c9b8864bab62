package domain

import (
	"strings"
	"time"
)

const CategoryNameMaxLength = 100

// Category represents a product category
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	NameJa    string    `json:"nameJa" db:"name_ja"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryInput carries the admin-editable fields of a category.
type CategoryInput struct {
	Name   string
	NameJa string
}

// Normalize trims both names.
func (in *CategoryInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.NameJa = strings.TrimSpace(in.NameJa)
}

// Validate returns field-level errors keyed by the JSON field name.
func (in CategoryInput) Validate() FieldErrors {
	errs := FieldErrors{}
	validateText(errs, "name", in.Name, CategoryNameMaxLength, LanguageEnglish)
	validateText(errs, "nameJa", in.NameJa, CategoryNameMaxLength, LanguageJapanese)
	return errs
}
