// Package validation registers the custom binding tags used by the DTOs
package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Custom tags
const (
	TagHTTPURL  = "httpurl"
	TagNotBlank = "notblank"
)

// IsHTTPURL accepts absolute http and https URLs with a host
func IsHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsNotBlank rejects empty and whitespace-only strings
func IsNotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		TagHTTPURL:  IsHTTPURL,
		TagNotBlank: IsNotBlank,
	}
	for tag, fn := range rules {
		check := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// RegisterGinValidators installs the custom tags on gin's default validator
func RegisterGinValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
