package core

import "rgbled-go/errcode"

// As[T] converts a control payload to T. Both T and *T are accepted; a nil
// payload yields the zero T, a nil *T is invalid.
func As[T any](v any) (T, errcode.Code) {
	var zero T
	switch x := v.(type) {
	case nil:
		return zero, ""
	case T:
		return x, ""
	case *T:
		if x == nil {
			return zero, errcode.InvalidPayload
		}
		return *x, ""
	}
	return zero, errcode.InvalidPayload
}
