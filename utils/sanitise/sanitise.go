package sanitise

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/microcosm-cc/bluemonday"

	"github.com/faithinsite/core/internal/errs"
	tagManager "github.com/faithinsite/core/utils/tags"
)

var (
	ErrSanitisation                = errors.New("failed sanitisation")
	ErrUnsupportedSanitisationType = errors.New("sanitisation type not supported")
	ErrUnstableSanitisation        = errors.New("sanitisation unstable")
	ErrNonSettableString           = errors.New("non settable string")
)

// Stringlikes sanitises the string fields of the passed object in situ.
// Fields can opt out with a `repo:"sanitise:false"` struct tag.
func Stringlikes[T any](obj T) (T, error) {
	fieldValue := getDerefFieldValueFromObj(obj)
	if fieldValue.Kind() == reflect.Map {
		return obj, errs.Wrap(ErrSanitisation, ErrUnsupportedSanitisationType)
	}

	err := sanitiseSwitch(fieldValue)
	if err != nil {
		return obj, errs.Wrap(ErrSanitisation, err)
	}

	return obj, nil
}

func sanitiseSwitch(fieldValue reflect.Value) error {
	switch fieldValue.Kind() {
	case reflect.Slice, reflect.Array:
		return sanitiseFieldSlice(fieldValue)
	case reflect.Struct:
		return sanitiseFieldStruct(fieldValue)
	default:
		return sanitiseFieldString(fieldValue)
	}
}

func sanitiseFieldStruct(fieldValue reflect.Value) error {
	fieldType := fieldValue.Type()
	for i := range fieldValue.NumField() {
		field := fieldType.Field(i)
		if !field.IsExported() {
			continue
		}

		sanitise, err := checkSanitiseTag(field)
		if err != nil {
			return err
		}

		if !sanitise {
			continue
		}

		fieldValue := getDerefFieldValue(fieldValue.Field(i))
		if !fieldValue.IsValid() {
			// nil pointer
			continue
		}

		err = sanitiseSwitch(fieldValue)
		if err != nil {
			return err
		}
	}

	return nil
}

func sanitiseFieldSlice(fieldValue reflect.Value) error {
	for i := range fieldValue.Len() {
		var err error

		fieldValue := getDerefFieldValue(fieldValue.Index(i))
		if !fieldValue.IsValid() {
			// nil pointer
			continue
		}

		err = sanitiseSwitch(fieldValue)
		if err != nil {
			return err
		}
	}

	return nil
}

func sanitiseFieldString(fieldValue reflect.Value) error {
	fieldValue = getDerefFieldValue(fieldValue)
	if !fieldValue.IsValid() {
		// nil pointer
		return nil
	}

	var value string
	if fieldValue.Kind() == reflect.String { //nolint: gocritic
		value = fieldValue.String()
	} else if isIgnoredType(fieldValue.Kind()) {
		return nil
	} else {
		slog.Error(fmt.Sprintf("Ignored sanitisation type: %v. Add handling or explicit ignore.",
			fieldValue.Kind()))

		return ErrUnsupportedSanitisationType
	}

	sanitisedString, err := sanitiseString(value)
	if err != nil {
		return err
	}

	if !fieldValue.CanSet() {
		return ErrNonSettableString
	}

	fieldValue.SetString(sanitisedString)

	return nil
}

func sanitiseString(value string) (string, error) {
	p := bluemonday.StrictPolicy()
	maxCntForStabilisation := 10
	cnt := 0

	var sanitisedValue string

	// We loop here for sanity, incase attacker tries to embed his XSS.
	// Likely bluemonday already accounts for this.
	for {
		sanitisedValue = p.Sanitize(value)
		if sanitisedValue == value {
			break
		}

		value = sanitisedValue

		cnt++
		if cnt == maxCntForStabilisation {
			return "", ErrUnstableSanitisation
		}
	}

	return sanitisedValue, nil
}

func isIgnoredType(kind reflect.Kind) bool {
	// We have an allow list for the ignored supported primitive types, which we deem don't
	// require sanitisation. We only currently support slices and structs as non-primitives.
	ignored := []reflect.Kind{reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16,
		reflect.Uint32, reflect.Uint64, reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128}

	return slices.Contains(ignored, kind)
}

func checkSanitiseTag(field reflect.StructField) (bool, error) {
	return tagManager.Sanitise(field.Tag)
}

func getDerefFieldValue(fieldValue reflect.Value) reflect.Value {
	for fieldValue.Kind() == reflect.Pointer {
		fieldValue = fieldValue.Elem()
	}

	return fieldValue
}

func getDerefFieldValueFromObj(obj any) reflect.Value {
	return getDerefFieldValue(reflect.ValueOf(obj))
}
