package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/contactdock/contactdock-server/internal/errors"
)

type createContactInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	err := v.Validate(createContactInput{
		Name:  "Ann",
		Email: "ann@example.com",
		Color: "#3B82F6",
	})
	require.NoError(t, err)
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	v := New()

	err := v.Validate(createContactInput{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "is required", details["email"])
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(createContactInput{Name: "Ann", Email: "not-an-email"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	// json tag "email", not struct field "Email"
	assert.Contains(t, details, "email")
	assert.Equal(t, "must be a valid email address", details["email"])
}

func TestValidate_HexColor(t *testing.T) {
	v := New()

	err := v.Validate(createContactInput{Name: "Ann", Email: "ann@example.com", Color: "blue"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a hex color like #3B82F6", details["color"])
}
