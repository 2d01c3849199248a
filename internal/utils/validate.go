package utils

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	whatsappPattern = regexp.MustCompile(`^\d{10,13}$`)
	phonePattern    = regexp.MustCompile(`^\d{10,12}$`)
)

// IsWhatsApp reports whether s is a 10 to 13 digit WhatsApp number.
func IsWhatsApp(s string) bool {
	return whatsappPattern.MatchString(s)
}

// IsPhone reports whether s is a 10 to 12 digit phone number.
func IsPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// NormalizePhone rewrites +62/62 prefixed numbers to the local 0 prefix.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", "-", "").Replace(s)
	switch {
	case strings.HasPrefix(s, "+62"):
		return "0" + s[3:]
	case strings.HasPrefix(s, "62"):
		return "0" + s[2:]
	}
	return s
}

// IsHTTPURL reports whether s is an absolute http(s) URL.
func IsHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RegisterValidators adds the whatsapp and phone tags to v and makes it
// report fields by their json name.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("whatsapp", func(fl validator.FieldLevel) bool {
		return IsWhatsApp(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
}

// BindingDetails turns a request binding failure into per-field messages.
// It returns nil when err is not a validation failure.
func BindingDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "whatsapp":
		return "whatsapp number must be 10-13 digits"
	case "phone":
		return "phone must be 10-12 digits"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	}
	return fe.Field() + " is invalid"
}
