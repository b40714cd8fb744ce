package transform_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faithinsite/core/internal/api/transform"
	"github.com/faithinsite/core/utils/ptr"
)

var errForced = errors.New("forced transform failure")

func intToString(i int) (*string, error) {
	if i == 3 {
		return nil, errForced
	}

	return ptr.PointTo(strconv.Itoa(i)), nil
}

func TestToList(t *testing.T) {
	t.Run("Should transform every item", func(t *testing.T) {
		result, err := transform.ToList([]*int{ptr.PointTo(1), ptr.PointTo(2)}, intToString)
		assert.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, result)
	})

	t.Run("Should abort on the first failing item", func(t *testing.T) {
		result, err := transform.ToList([]*int{ptr.PointTo(1), ptr.PointTo(3), ptr.PointTo(4)}, intToString)
		assert.ErrorIs(t, err, errForced)
		assert.Nil(t, result)
	})

	t.Run("Should keep an empty page empty", func(t *testing.T) {
		result, err := transform.ToList([]*int{}, intToString)
		assert.NoError(t, err)
		assert.Equal(t, []string{}, result)
	})
}
