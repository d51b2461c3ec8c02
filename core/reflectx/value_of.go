package reflectx

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ErrInvalidArgumentValue is returned when an argument value cannot be converted to the specified type.
var ErrInvalidArgumentValue = errors.New("invalid argument value")

// ParseValue converts a string representation of an argument to a reflect.Value of the specified type.
// It attempts to unmarshal the string into the appropriate type using various methods such as JSON,
// proto.Message, encoding.TextUnmarshaler, BytesDecoder and encoding.BinaryUnmarshaler.
//
// Parameters:
//   - s: The string representation of the argument.
//   - t: The reflect.Type to which the argument should be converted.
//
// Returns:
//   - reflect.Value: The converted value.
//   - error: A ValueError if the conversion fails or the type is unsupported.
//
// The function follows these steps:
//  1. Checks if the target type is a string or a pointer to a string and handles these cases directly.
//  2. Attempts to unmarshal the string as JSON if it is valid JSON. Note that simple values such as numbers,
//     booleans, and null are also valid JSON if they are represented as strings. proto.Message
//     values are unmarshaled with protojson.
//  3. Attempts to unmarshal the string using the encoding.TextUnmarshaler interface if implemented.
//  4. Attempts to unmarshal the string using the proto.Message interface if implemented.
//  5. Attempts to decode the string using the BytesDecoder interface if implemented.
//  6. Attempts to unmarshal the string using the encoding.BinaryUnmarshaler interface if implemented.
//  7. Returns a ValueError if none of the above methods succeed.
func ParseValue(s string, t reflect.Type) (reflect.Value, error) {
	argRaw := []byte(s)
	argPointer := t.Kind() == reflect.Pointer

	var (
		argValue reflect.Value
		outValue reflect.Value
	)
	if argPointer {
		argValue = reflect.New(t.Elem())
		outValue = argValue
	} else {
		argValue = reflect.New(t)
		outValue = argValue.Elem()
	}

	switch {
	case t.Kind() == reflect.String:
		outValue.SetString(s)
		return outValue, nil
	case argPointer && t.Elem().Kind() == reflect.String:
		argValue.Elem().SetString(s)
		return outValue, nil
	}

	argInterface := argValue.Interface()

	var lastErr error
	if json.Valid(argRaw) {
		if protoMessage, ok := argInterface.(proto.Message); ok {
			lastErr = protojson.Unmarshal(argRaw, protoMessage)
		} else {
			lastErr = json.Unmarshal(argRaw, argInterface)
		}
		if lastErr == nil {
			return outValue, nil
		}
	}

	if unmarshaler, ok := argInterface.(encoding.TextUnmarshaler); ok && utf8.Valid(argRaw) {
		if lastErr = unmarshaler.UnmarshalText(argRaw); lastErr == nil {
			return outValue, nil
		}
	}

	if protoMessage, ok := argInterface.(proto.Message); ok {
		if lastErr = proto.Unmarshal(argRaw, protoMessage); lastErr == nil {
			return outValue, nil
		}
	}

	if decoder, ok := argInterface.(BytesDecoder); ok {
		if lastErr = decoder.DecodeFromBytes(argRaw); lastErr == nil {
			return outValue, nil
		}
	}

	if unmarshaler, ok := argInterface.(encoding.BinaryUnmarshaler); ok {
		if lastErr = unmarshaler.UnmarshalBinary(argRaw); lastErr == nil {
			return outValue, nil
		}
	}

	return outValue, NewValueError(s, t, lastErr)
}

// ValueError is a custom error type that wraps both external and internal errors,
// providing additional context about the argument and the target type involved in the error.
type ValueError struct {
	external error
	internal error
	arg, t   string
}

// Error returns a formatted error message indicating the conversion failure.
func (e ValueError) Error() string {
	if e.external == nil {
		return fmt.Sprintf("%v: '%s': for type '%s'", e.internal, e.arg, e.t)
	}

	return fmt.Sprintf("%v: '%s': for type '%s': '%v'", e.internal, e.arg, e.t, e.external)
}

// Is checks if the target error matches the internal error.
func (e ValueError) Is(target error) bool {
	return e.internal == target
}

// Unwrap returns the external error, if any.
func (e ValueError) Unwrap() error {
	return e.external
}

// NewValueError constructs an error message for invalid argument value conversions.
func NewValueError(arg string, t reflect.Type, errOrNil error) error {
	return ValueError{
		external: errOrNil,
		internal: ErrInvalidArgumentValue,
		arg:      arg,
		t:        t.String(),
	}
}
