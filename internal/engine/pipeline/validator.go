package pipeline

import (
	"errors"
	"strings"
)

var (
	ErrEmptyInput    = errors.New("please enter a URL")
	ErrInvalidScheme = errors.New("the URL must start with http:// or https://")
)

// ValidateURL applies the form's checks to the raw input. The input is used
// verbatim afterwards, so no normalisation happens here.
func ValidateURL(raw string) error {
	if raw == "" {
		return ErrEmptyInput
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return ErrInvalidScheme
	}

	return nil
}
