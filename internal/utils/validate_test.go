package utils

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWhatsApp(t *testing.T) {
	assert.True(t, IsWhatsApp("0812345678"))
	assert.True(t, IsWhatsApp("0812345678901"))
	assert.False(t, IsWhatsApp("081234567"))
	assert.False(t, IsWhatsApp("08123456789012"))
	assert.False(t, IsWhatsApp("08123abc901"))
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("08123456789"))
	assert.False(t, IsPhone("0812345678901"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "08123456789", NormalizePhone("+628123456789"))
	assert.Equal(t, "08123456789", NormalizePhone("628123456789"))
	assert.Equal(t, "08123456789", NormalizePhone(" 0812-3456-789 "))
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://cdn.example.com/a.png"))
	assert.False(t, IsHTTPURL("cdn.example.com/a.png"))
	assert.False(t, IsHTTPURL("ftp://cdn.example.com/a.png"))
}

func TestRegisterValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	type form struct {
		WhatsApp string `validate:"whatsapp"`
		Phone    string `validate:"phone"`
	}
	assert.NoError(t, v.Struct(form{WhatsApp: "081234567890", Phone: "08123456789"}))
	assert.Error(t, v.Struct(form{WhatsApp: "123", Phone: "08123456789"}))
}

func TestBindingDetails(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	type req struct {
		Phone    string `json:"phone" validate:"required,phone"`
		Password string `json:"password" validate:"omitempty,min=6"`
	}
	details := BindingDetails(v.Struct(req{Phone: "12", Password: "abc"}))
	assert.Equal(t, map[string]string{
		"phone":    "phone must be 10-12 digits",
		"password": "password must be at least 6 characters",
	}, details)

	assert.Nil(t, BindingDetails(errors.New("EOF")))
}
