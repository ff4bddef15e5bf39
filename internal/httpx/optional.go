package httpx

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Optional distinguishes a key left out of a PATCH body from one sent as
// null. Set is false when the key was absent; Value is nil for null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// TrimmedString returns the trimmed value, with blank strings collapsed to
// nil so that "" clears a nullable column the same way null does.
func TrimmedString(o Optional[string]) *string {
	if o.Value == nil {
		return nil
	}
	s := strings.TrimSpace(*o.Value)
	if s == "" {
		return nil
	}
	return &s
}
