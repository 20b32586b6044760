package utils

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"
)

const maxUsernameAttempts = 50

var ErrUsernameExhausted = errors.New("could not generate a unique username")

// UsernameBase returns the lower-cased first word of fullName with anything
// but letters and digits removed.
func UsernameBase(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "therapist"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(fields[0]) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "therapist"
	}
	return b.String()
}

// GenerateUsername appends three random digits to the username base, e.g. "priya042".
func GenerateUsername(fullName string) string {
	return fmt.Sprintf("%s%03d", UsernameBase(fullName), rand.IntN(1000))
}

// GenerateUniqueUsername draws usernames until taken reports one as free.
func GenerateUniqueUsername(fullName string, taken func(string) (bool, error)) (string, error) {
	for i := 0; i < maxUsernameAttempts; i++ {
		candidate := GenerateUsername(fullName)
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrUsernameExhausted
}

// PasswordFromDOB turns a YYYY-MM-DD date of birth into the DDMMYY default password.
func PasswordFromDOB(dob string) (string, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(dob))
	if err != nil {
		return "", fmt.Errorf("date_of_birth must be YYYY-MM-DD: %w", err)
	}
	return d.Format("020106"), nil
}
