package mock

import "errors"

var (
	ErrMustPointerToSlice = errors.New("result must be a pointer to a slice")
	ErrMustBeSlice        = errors.New("result must point to a slice")
	ErrItemNotAssignable  = errors.New("item is not assignable to result slice")
	ErrMustBePointer      = errors.New("resource must be a pointer to a struct")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrUnsupportedCompare = errors.New("unsupported comparison for value type")
)
