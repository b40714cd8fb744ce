// Package tags parses the `repo` struct tag consulted by the sanitiser.
package tags

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/faithinsite/core/internal/errs"
)

var ErrBadRepoTag = errors.New("unrecognised repo tag")

// Sanitise reports whether a field participates in markup stripping.
// Fields default to sanitised; `repo:"sanitise:false"` opts out. Keys
// other than sanitise are ignored so the tag can grow without breaking
// this parser.
func Sanitise(tag reflect.StructTag) (bool, error) {
	for part := range strings.SplitSeq(tag.Get("repo"), `;`) {
		key, value, found := strings.Cut(part, `:`)
		if key != "sanitise" {
			continue
		}

		if !found {
			return true, ErrBadRepoTag
		}

		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return true, errs.Wrap(ErrBadRepoTag, err)
		}

		return enabled, nil
	}

	return true, nil
}
