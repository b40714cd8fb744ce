package sanitise_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faithinsite/core/utils/sanitise"
)

type inner struct {
	Note string
}

type record struct {
	Name    string
	Alias   *string
	Skipped string `repo:"sanitise:false"`
	Count   int
	Labels  []string
	Nested  inner
	hidden  string //nolint: unused
}

func TestStringlikes(t *testing.T) {
	t.Run("strips markup from struct fields", func(t *testing.T) {
		alias := `<a href="x">alias</a>`
		r := &record{
			Name:    "<script>alert(1)</script>acme",
			Alias:   &alias,
			Skipped: "<b>kept</b>",
			Count:   3,
			Labels:  []string{"<i>one</i>", "two"},
			Nested:  inner{Note: "<img src=x onerror=alert(1)>note"},
		}

		_, err := sanitise.Stringlikes(r)
		require.NoError(t, err)

		assert.Equal(t, "acme", r.Name)
		assert.Equal(t, "alias", *r.Alias)
		assert.Equal(t, "<b>kept</b>", r.Skipped)
		assert.Equal(t, []string{"one", "two"}, r.Labels)
		assert.Equal(t, "note", r.Nested.Note)
	})

	t.Run("plain strings pass through unchanged", func(t *testing.T) {
		r := &record{Name: "acme corp"}

		_, err := sanitise.Stringlikes(r)
		require.NoError(t, err)
		assert.Equal(t, "acme corp", r.Name)
	})

	t.Run("nil pointers are skipped", func(t *testing.T) {
		r := &record{Name: "acme"}

		_, err := sanitise.Stringlikes(r)
		require.NoError(t, err)
		assert.Nil(t, r.Alias)
	})

	t.Run("maps are rejected", func(t *testing.T) {
		m := map[string]string{"k": "<b>v</b>"}

		_, err := sanitise.Stringlikes(m)
		require.Error(t, err)
		assert.ErrorIs(t, err, sanitise.ErrUnsupportedSanitisationType)
	})

	t.Run("bad tag surfaces an error", func(t *testing.T) {
		type badTag struct {
			Name string `repo:"sanitise:maybe"`
		}

		_, err := sanitise.Stringlikes(&badTag{Name: "x"})
		require.Error(t, err)
	})
}
