package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	domainNamePattern   = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)
	criterionKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)
)

func init() {
	Validate = validator.New()

	// Custom tags used by the request DTOs
	if err := Validate.RegisterValidation("domain_name", validateDomainName); err != nil {
		panic(fmt.Sprintf("failed to register domain_name validator: %v", err))
	}
	if err := Validate.RegisterValidation("criterion_key", validateCriterionKey); err != nil {
		panic(fmt.Sprintf("failed to register criterion_key validator: %v", err))
	}
}

// validateDomainName accepts lowercase slugs such as "movie" or "car"
func validateDomainName(fl validator.FieldLevel) bool {
	return domainNamePattern.MatchString(fl.Field().String())
}

// validateCriterionKey accepts identifiers such as "Genres" or "RuntimeRange"
func validateCriterionKey(fl validator.FieldLevel) bool {
	return criterionKeyPattern.MatchString(fl.Field().String())
}

// ValidateDomainName validates a domain name outside of a struct
func ValidateDomainName(value string) error {
	if !domainNamePattern.MatchString(value) {
		return fmt.Errorf("invalid domain name: %q (lowercase letters, digits, '-' and '_')", value)
	}
	return nil
}

// Struct validates v and flattens validator errors into one readable error
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(parts, "; "))
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
