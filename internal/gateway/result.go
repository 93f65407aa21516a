package gateway

// Result is the outcome of a fail-soft gateway call: either a value or
// absent. Gateways never surface transport errors to their callers.
type Result[T any] struct {
	value T
	ok    bool
}

func Found[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

func Absent[T any]() Result[T] {
	return Result[T]{}
}

func (r Result[T]) Get() (T, bool) {
	return r.value, r.ok
}

func (r Result[T]) Present() bool {
	return r.ok
}

// Ptr returns nil when the result is absent.
func (r Result[T]) Ptr() *T {
	if !r.ok {
		return nil
	}
	v := r.value
	return &v
}
