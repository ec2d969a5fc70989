package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	got, ok := ParseOrderStatus(" Shipped ")
	assert.True(t, ok)
	assert.Equal(t, StatusShipped, got)

	for _, bad := range []string{"", "returned", "PAID_"} {
		_, ok := ParseOrderStatus(bad)
		assert.False(t, ok, "input %q", bad)
	}
}
