package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_StrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{name: "upper lower and number", password: "Sup3rSecret", valid: true},
		{name: "too short", password: "Ab1", valid: false},
		{name: "no uppercase", password: "sup3rsecret", valid: false},
		{name: "no number", password: "SuperSecret", valid: false},
		{name: "empty", password: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidPassword(tt.password))
		})
	}
}

func TestValidator_DisplayName(t *testing.T) {
	v := New()

	type payload struct {
		Name string `json:"name" validate:"required,display_name"`
	}

	assert.NoError(t, v.Validate(&payload{Name: "Marketing Lead"}))
	assert.Error(t, v.Validate(&payload{Name: "X"}))
	assert.Error(t, v.Validate(&payload{Name: "bad\nname"}))
}

func TestValidator_IdentityRole(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateVar("admin", "identity_role"))
	assert.NoError(t, v.ValidateVar("manager", "identity_role"))
	assert.NoError(t, v.ValidateVar("contributor", "identity_role"))
	assert.Error(t, v.ValidateVar("owner", "identity_role"))
}

func TestValidator_ErrorMessagesUseJSONNames(t *testing.T) {
	v := New()

	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}

	err := v.Validate(&payload{Email: "not-an-email"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}
