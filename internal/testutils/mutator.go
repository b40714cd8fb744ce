package testutils

// NewMutator returns a function producing fresh copies of the base value,
// optionally adjusted by the given mutations. It keeps table tests readable
// when most cases differ from a valid base in a single field.
func NewMutator[T any](base func() T) func(mutations ...func(*T)) T {
	return func(mutations ...func(*T)) T {
		value := base()

		for _, mutate := range mutations {
			mutate(&value)
		}

		return value
	}
}
