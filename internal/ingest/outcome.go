package ingest

// Outcome is the result of a step that degrades instead of failing. Err set
// means Value is the zero value and the pipeline continues without it.
type Outcome[T any] struct {
	Value T
	Err   error
}

func outcomeOf[T any](value T, err error) Outcome[T] {
	if err != nil {
		var zero T
		return Outcome[T]{Value: zero, Err: err}
	}
	return Outcome[T]{Value: value}
}

// Degraded reports whether the step fell back to its empty value.
func (o Outcome[T]) Degraded() bool {
	return o.Err != nil
}

