package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"veganbite/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bilingualRequest struct {
	Name     string `json:"name" validate:"required,max=100,latin"`
	NameJa   string `json:"nameJa" validate:"required,max=100,japanese"`
	ImageURL string `json:"imageUrl" validate:"required,httpurl"`
	Rating   int    `json:"rating" validate:"gte=1,lte=5"`
}

func decode(t *testing.T, body interface{}) error {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	var dst bilingualRequest
	return DecodeAndValidate(req, &dst)
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"name":     "Soy Milk",
		"nameJa":   "豆乳",
		"imageUrl": "https://cdn.example.com/soy.png",
		"rating":   4,
	}
}

// Feature: veganbite, Property 13: Missing required fields are reported by JSON name
// Validates: Requirements 4.2
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("each missing field is reported under its JSON name", prop.ForAll(
		func(dropName, dropNameJa, dropImage bool) bool {
			body := validBody()
			var want []string
			if dropName {
				delete(body, "name")
				want = append(want, "name")
			}
			if dropNameJa {
				delete(body, "nameJa")
				want = append(want, "nameJa")
			}
			if dropImage {
				delete(body, "imageUrl")
				want = append(want, "imageUrl")
			}

			err := decode(t, body)
			if len(want) == 0 {
				return err == nil
			}

			got := map[string]string{}
			for _, ve := range FormatValidationErrors(err) {
				got[ve.Field] = ve.Message
			}
			for _, field := range want {
				if got[field] != domain.MsgRequired {
					return false
				}
			}
			return len(got) == len(want)
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: veganbite, Property 14: Rating outside 1..5 is rejected
// Validates: Requirements 4.3
func TestProperty_RatingRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("rating outside 1..5 is rejected", prop.ForAll(
		func(rating int) bool {
			body := validBody()
			body["rating"] = rating
			err := decode(t, body)
			if rating >= 1 && rating <= 5 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-10, 15),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCustomTags(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   interface{}
		message string
	}{
		{"english name without latin letters", "name", "豆乳", domain.MsgMustBeEnglish},
		{"japanese name without japanese", "nameJa", "Soy Milk", domain.MsgMustBeJapanese},
		{"image url with ftp scheme", "imageUrl", "ftp://cdn.example.com/soy.png", domain.MsgInvalidURL},
		{"image url without scheme", "imageUrl", "cdn.example.com/soy.png", domain.MsgInvalidURL},
		{"name over 100 runes", "name", strings.Repeat("a", 101), "Must be at most 100 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validBody()
			body[tt.field] = tt.value

			errs := FormatValidationErrors(decode(t, body))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(`{"name": `))
	var dst bilingualRequest

	err := DecodeAndValidate(req, &dst)
	assert.True(t, errors.Is(err, ErrInvalidBody))
	assert.Empty(t, FormatValidationErrors(err))
}

func TestFormatValidationErrors_NestedFieldPath(t *testing.T) {
	type ref struct {
		ID int64 `json:"id" validate:"gt=0"`
	}
	type withRefs struct {
		Categories []ref `json:"categories" validate:"min=1,dive"`
	}

	errs := FormatValidationErrors(ValidateRequest(withRefs{Categories: []ref{{ID: 0}}}))
	require.Len(t, errs, 1)
	assert.Equal(t, "categories[0].id", errs[0].Field)

	errs = FormatValidationErrors(ValidateRequest(withRefs{}))
	require.Len(t, errs, 1)
	assert.Equal(t, "categories", errs[0].Field)
	assert.Equal(t, "Must contain at least 1 item(s)", errs[0].Message)
}
