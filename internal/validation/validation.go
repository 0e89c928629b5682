package validation

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidateRequired checks that a field is not blank
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMaxLength checks the maximum length of a string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return errors.New(fieldName + " must be at most " + strconv.Itoa(maxLength) + " characters long")
	}
	return nil
}

// ValidateEmail checks basic email shape
func ValidateEmail(email string) error {
	if !strings.Contains(email, "@") {
		return errors.New("email must have a valid format")
	}
	return nil
}

// ValidatePollTitle checks a poll title
func ValidatePollTitle(title string) error {
	if err := ValidateRequired(title, "title"); err != nil {
		return err
	}
	return ValidateMaxLength(title, 255, "title")
}

// ValidateOptionText checks one poll option's text
func ValidateOptionText(text string) error {
	if err := ValidateRequired(text, "option text"); err != nil {
		return err
	}
	return ValidateMaxLength(text, 255, "option text")
}
