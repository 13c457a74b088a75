package email

import (
	"strings"
	"unicode"
)

// Normalize lowercases and trims an address for comparisons and lookups.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Domain returns the normalised part after the last '@', or "" when the
// address has no domain.
func Domain(email string) string {
	email = Normalize(email)
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}

// IsValid performs the minimal shape check used at trust boundaries: a
// non-empty local part, one '@' and a dotted domain.
func IsValid(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	if at <= 0 || strings.Count(email, "@") != 1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1 && !strings.ContainsAny(email, " \t\r\n")
}

// DeriveDisplayName builds a display name from the local part of an address,
// e.g. "ana.maria-rojas@duoc.cl" → "Ana Rojas".
func DeriveDisplayName(email string) string {
	first, last := DeriveNameFromEmail(email)
	if last == "" {
		return first
	}
	return first + " " + last
}

func DeriveNameFromEmail(email string) (string, string) {
	localPart := strings.TrimSpace(email)
	if at := strings.IndexByte(localPart, '@'); at >= 0 {
		localPart = localPart[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Customer", ""
	}

	first := capitalize(parts[0])
	last := ""
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
