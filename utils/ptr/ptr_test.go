package ptr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faithinsite/core/utils/ptr"
)

func TestPointTo(t *testing.T) {
	v := ptr.PointTo("value")

	assert.NotNil(t, v)
	assert.Equal(t, "value", *v)
}

func TestGetIntOrDefault(t *testing.T) {
	assert.Equal(t, 20, ptr.GetIntOrDefault(nil, 20))
	assert.Equal(t, 5, ptr.GetIntOrDefault(ptr.PointTo(5), 20))
}

func TestIsValidStrPtr(t *testing.T) {
	assert.False(t, ptr.IsValidStrPtr(nil))
	assert.False(t, ptr.IsValidStrPtr(ptr.PointTo("  ")))
	assert.True(t, ptr.IsValidStrPtr(ptr.PointTo("value")))
}

func TestGetSafeDeref(t *testing.T) {
	assert.Equal(t, "", ptr.GetSafeDeref[string](nil))
	assert.Equal(t, "value", ptr.GetSafeDeref(ptr.PointTo("value")))
}
