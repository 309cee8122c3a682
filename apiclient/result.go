package apiclient

import (
	"context"
	"errors"
	"reflect"
)

// State tags the outcome of a read.
type State int

const (
	Loaded State = iota
	Empty
	NotFound
	Failed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Empty:
		return "empty"
	case NotFound:
		return "not-found"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result keeps "no data" and "fetch failed" apart so pages can render them
// differently.
type Result[T any] struct {
	State State
	Data  T
	Err   error
}

// Reason is a short, user-facing description of a failed read.
func (r Result[T]) Reason() string { return Reason(r.Err) }

// Reason describes err for display. HTTP failures keep their method, path
// and status.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the backend did not answer in time"
	}
	return err.Error()
}

// Fetch runs fn and classifies its outcome. A nil pointer, nil or empty
// slice counts as Empty; a 404 as NotFound; any other error as Failed.
func Fetch[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	data, err := fn(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		return Result[T]{State: NotFound, Err: err}
	case err != nil:
		return Result[T]{State: Failed, Err: err}
	case isEmpty(data):
		return Result[T]{State: Empty, Data: data}
	default:
		return Result[T]{State: Loaded, Data: data}
	}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
