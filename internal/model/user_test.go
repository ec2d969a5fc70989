package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"customer", RoleCustomer, true},
		{"seller", RoleSeller, true},
		{"admin", RoleAdmin, true},
		{"  Admin ", RoleAdmin, true},
		{"CUSTOMER", RoleCustomer, true},
		{"owner", "", false},
		{"", "", false},
		{"superadmin", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestRoleSatisfies(t *testing.T) {
	// Admin passes every gate; seller and customer only pass their own.
	tests := []struct {
		held, required Role
		want           bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleSeller, true},
		{RoleAdmin, RoleCustomer, true},
		{RoleSeller, RoleSeller, true},
		{RoleSeller, RoleAdmin, false},
		{RoleSeller, RoleCustomer, false},
		{RoleCustomer, RoleCustomer, true},
		{RoleCustomer, RoleSeller, false},
		{RoleCustomer, RoleAdmin, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.held.Satisfies(tt.required), "%s vs %s", tt.held, tt.required)
	}
}
