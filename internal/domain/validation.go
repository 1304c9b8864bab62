package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Language selects the script a bilingual text field must contain.
type Language int

const (
	LanguageEnglish Language = iota
	LanguageJapanese
)

// Field error messages shared by every validator in the service.
const (
	MsgRequired         = "This field is required"
	MsgMustBeEnglish    = "Must contain at least one English letter"
	MsgMustBeJapanese   = "Must contain at least one Japanese character"
	MsgInvalidURL       = "Must be a valid http(s) URL"
	MsgCategoryRequired = "Select at least one category"
)

var (
	latinPattern    = regexp.MustCompile(`[a-zA-Z]`)
	japanesePattern = regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}\x{4E00}-\x{9FFF}]`)
	slugSeparator   = regexp.MustCompile(`[^a-z0-9]+`)
)

// FieldErrors maps a JSON field name to a human-readable message.
type FieldErrors map[string]string

// Add records the first error for a field; later errors for the same field are dropped.
func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// Empty reports whether no field failed.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// ContainsLatin reports whether s has at least one ASCII letter.
func ContainsLatin(s string) bool {
	return latinPattern.MatchString(s)
}

// ContainsJapanese reports whether s has at least one hiragana, katakana or kanji character.
func ContainsJapanese(s string) bool {
	return japanesePattern.MatchString(s)
}

// IsHTTPURL reports whether s is an absolute http or https URL with a host.
func IsHTTPURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Slugify lowercases name and collapses every run of non-alphanumerics into a dash.
func Slugify(name string) string {
	slug := slugSeparator.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func validateText(errs FieldErrors, field, value string, maxLength int, lang Language) {
	if value == "" {
		errs.Add(field, MsgRequired)
		return
	}
	if utf8.RuneCountInString(value) > maxLength {
		errs.Add(field, fmt.Sprintf("Must be at most %d characters", maxLength))
		return
	}
	switch lang {
	case LanguageEnglish:
		if !ContainsLatin(value) {
			errs.Add(field, MsgMustBeEnglish)
		}
	case LanguageJapanese:
		if !ContainsJapanese(value) {
			errs.Add(field, MsgMustBeJapanese)
		}
	}
}
