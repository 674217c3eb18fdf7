// Package booking turns accepted quotes into persisted bookings and issues
// the human-facing booking numbers printed on consignment notes.
package booking

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

// Booking numbers have the form LL-LLL-NNNNN. The letter alphabet excludes
// I, O and U so numbers survive being read out over the phone.
const (
	numberLetters = "ABCDEFGHJKMNPQRSTVWXYZ"
	numberDigits  = "0123456789"
)

// numberRegex validates the two-letter, three-letter, five-digit shape.
var numberRegex = regexp.MustCompile(`^[A-HJ-NP-TV-Z]{2}-[A-HJ-NP-TV-Z]{3}-\d{5}$`)

// ErrInvalidNumber is returned when a booking number does not match the
// canonical shape.
var ErrInvalidNumber = errors.New("booking: invalid booking number")

// NewNumber generates a fresh booking number. Randomness comes from
// crypto/rand: booking numbers are externally visible and must not be
// guessable from one another.
func NewNumber() (string, error) {
	p1, err := randomString(numberLetters, 2)
	if err != nil {
		return "", err
	}
	p2, err := randomString(numberLetters, 3)
	if err != nil {
		return "", err
	}
	p3, err := randomString(numberDigits, 5)
	if err != nil {
		return "", err
	}
	return p1 + "-" + p2 + "-" + p3, nil
}

// ValidNumber reports whether code is a well-formed booking number.
func ValidNumber(code string) bool {
	return numberRegex.MatchString(code)
}

func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("booking: random source: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}
