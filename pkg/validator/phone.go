package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 or 11 digits
	ErrInvalidLength = errors.New("phone number must have 10 or 11 digits including area code")

	// ErrInvalidAreaCode indicates the two-digit DDD area code is out of range
	ErrInvalidAreaCode = errors.New("phone number must start with a valid area code (11-99)")

	// ErrInvalidMobile indicates an 11-digit number whose subscriber part does not start with 9
	ErrInvalidMobile = errors.New("11-digit mobile numbers must start with 9 after the area code")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles Brazilian phone number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a Brazilian phone number.
// Accepts formats like 84999998888, (84) 99999-8888 or +55 84 3222-1111.
// Returns the sanitized number (DDD + subscriber, digits only).
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 && len(sanitized) != 11 {
		return "", ErrInvalidLength
	}

	if sanitized[0] == '0' || sanitized[1] == '0' {
		return "", ErrInvalidAreaCode
	}

	if len(sanitized) == 11 && sanitized[2] != '9' {
		return "", ErrInvalidMobile
	}

	return sanitized, nil
}

// Sanitize removes separators and the +55 country code
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "+", "", ".", "").Replace(phone)

	if strings.HasPrefix(phone, "55") && (len(phone) == 12 || len(phone) == 13) {
		phone = phone[2:]
	}

	return phone
}

// Format formats a phone number for display: (DD) NNNNN-NNNN
func (v *PhoneValidator) Format(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}

	split := len(sanitized) - 4
	return fmt.Sprintf("(%s) %s-%s", sanitized[0:2], sanitized[2:split], sanitized[split:]), nil
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}
