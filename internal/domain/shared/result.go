package shared

// Result is the tagged outcome of an external call: either a payload or a
// failure with a code and message. Transport failures are folded into the
// same failure shape as a reported {success:false}.
type Result[T any] struct {
	value T
	err   *DomainError
}

// Ok wraps a successful payload.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err wraps a failure.
func Err[T any](code, message string) Result[T] {
	return Result[T]{err: NewDomainError(code, message)}
}

// IsOk reports whether the call succeeded.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Value returns the payload. It is the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Failure returns the failure, or nil on success.
func (r Result[T]) Failure() *DomainError {
	return r.err
}

// Unpack returns the payload and failure as a Go error pair.
func (r Result[T]) Unpack() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
