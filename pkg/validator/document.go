package validator

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrEmptyCPF indicates the CPF is empty
	ErrEmptyCPF = errors.New("cpf cannot be empty")

	// ErrInvalidCPF indicates the CPF has the wrong length or check digits
	ErrInvalidCPF = errors.New("cpf must have 11 digits with valid check digits")

	// ErrInvalidUF indicates a state code that is not exactly two letters
	ErrInvalidUF = errors.New("state code must have exactly 2 letters")

	// ErrInvalidDate indicates a date not in YYYY-MM-DD form
	ErrInvalidDate = errors.New("date must use the YYYY-MM-DD format")

	// ErrInvalidTime indicates a time of day not in HH:MM or HH:MM:SS form
	ErrInvalidTime = errors.New("time must use the HH:MM or HH:MM:SS format")
)

// NormalizeCPF strips punctuation from a CPF and verifies its check digits.
// Returns the 11-digit form.
func NormalizeCPF(cpf string) (string, error) {
	if strings.TrimSpace(cpf) == "" {
		return "", ErrEmptyCPF
	}

	digits := make([]byte, 0, 11)
	for _, r := range cpf {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, byte(r))
		case r == '.' || r == '-' || r == ' ':
		default:
			return "", ErrInvalidCPF
		}
	}

	if len(digits) != 11 || allSame(digits) {
		return "", ErrInvalidCPF
	}

	if cpfCheckDigit(digits[:9]) != digits[9] || cpfCheckDigit(digits[:10]) != digits[10] {
		return "", ErrInvalidCPF
	}

	return string(digits), nil
}

func cpfCheckDigit(digits []byte) byte {
	sum := 0
	weight := len(digits) + 1
	for _, d := range digits {
		sum += int(d-'0') * weight
		weight--
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte('0' + 11 - rest)
}

func allSame(digits []byte) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}

// NormalizeUF upper-cases a state code and requires exactly two letters
func NormalizeUF(uf string) (string, error) {
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if len(uf) != 2 {
		return "", ErrInvalidUF
	}
	for _, r := range uf {
		if !unicode.IsLetter(r) {
			return "", ErrInvalidUF
		}
	}
	return uf, nil
}

// ParseDate parses a calendar date in YYYY-MM-DD form
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// NormalizeTimeOfDay accepts HH:MM or HH:MM:SS and returns HH:MM:SS
func NormalizeTimeOfDay(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", ErrInvalidTime
}
