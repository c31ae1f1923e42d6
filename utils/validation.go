// utils/validation.go
package utils

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	slugSeparators  = regexp.MustCompile(`[^a-z0-9]+`)
	phoneCleanupSet = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phoneCleanupSet.Replace(phone))
}

// ValidateEmail accepts a bare address, not a "Name <addr>" form.
func ValidateEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Slugify folds accents ("Portón Automático" -> "porton-automatico") and
// joins the remaining alphanumerics with dashes.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Trim(slugSeparators.ReplaceAllString(folded, "-"), "-")
}
