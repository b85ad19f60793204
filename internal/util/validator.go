package util

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// ValidateName checks the display name (2-50 characters).
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	if len(name) > 50 {
		return fmt.Errorf("name must be at most 50 characters")
	}
	return nil
}

// ValidateEmail checks basic email shape.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidatePhone checks the phone number (10-15 digits, no separators).
func ValidatePhone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return fmt.Errorf("phone must be 10-15 digits")
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(pwd string) error {
	if len(pwd) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}
