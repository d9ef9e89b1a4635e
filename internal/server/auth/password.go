package auth

import (
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password IsPasswordAllowed accepts.
const MinPasswordLength = 6

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// IsPasswordAllowed reports whether password is at least MinPasswordLength
// runes long and mixes lowercase, uppercase, digit and non-alphanumeric
// characters.
func IsPasswordAllowed(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}

	return lower && upper && digit && symbol
}
