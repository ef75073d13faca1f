package docindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Response is the normalized outcome of a single API call.
// OK is the discriminant: Data is meaningful only when OK is true,
// Err only when it is false. Status is 0 when the request never
// reached the server or its response could not be read.
type Response[T any] struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status"`
	Data   T      `json:"data,omitempty"`
	Err    *Error `json:"error,omitempty"`
}

// Error is a failed call's error: a plain message or a structured
// validation failure reported by the server.
type Error struct {
	Message    string
	Validation *ValidationError
}

func (e *Error) Error() string {
	if e.Validation != nil {
		return e.Validation.Error()
	}
	return e.Message
}

// IsValidation reports whether the server rejected the input field by field.
func (e *Error) IsValidation() bool {
	return e != nil && e.Validation != nil
}

// UnmarshalJSON accepts either a JSON string or a validation error object.
func (e *Error) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var v ValidationError
		if err := json.Unmarshal(trimmed, &v); err != nil {
			// Unrecognized shape: keep the server's text.
			*e = Error{Message: string(trimmed)}
			return nil
		}
		*e = Error{Validation: &v}
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		// Numbers, booleans: keep their literal text.
		*e = Error{Message: string(trimmed)}
		return nil
	}
	*e = Error{Message: s}
	return nil
}

// MarshalJSON mirrors the wire shape: an object for validation errors, a string otherwise.
func (e *Error) MarshalJSON() ([]byte, error) {
	if e.Validation != nil {
		return json.Marshal(e.Validation)
	}
	return json.Marshal(e.Message)
}

// ValidationError describes which input fields failed server-side validation.
type ValidationError struct {
	Name   string  `json:"name"`
	Issues []Issue `json:"issues"`
}

func (v *ValidationError) Error() string {
	name := v.Name
	if name == "" {
		name = "ValidationError"
	}
	if len(v.Issues) == 0 {
		return name
	}
	msgs := make([]string, len(v.Issues))
	for i, is := range v.Issues {
		msgs[i] = is.String()
	}
	return name + ": " + strings.Join(msgs, "; ")
}

// Issue is a single field-level validation failure.
type Issue struct {
	Code     string        `json:"code"`
	Expected Literal       `json:"expected,omitempty"`
	Received Literal       `json:"received,omitempty"`
	Path     []PathElement `json:"path"`
	Message  string        `json:"message"`
}

func (is Issue) String() string {
	if len(is.Path) == 0 {
		return is.Message
	}
	parts := make([]string, len(is.Path))
	for i, p := range is.Path {
		parts[i] = p.String()
	}
	return strings.Join(parts, ".") + ": " + is.Message
}

// Literal is the text of a JSON value reported in an issue. Strings are
// unquoted; numbers, booleans, arrays and objects keep their JSON text.
type Literal string

// UnmarshalJSON accepts any JSON value.
func (l *Literal) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = Literal(s)
		return nil
	}
	*l = Literal(bytes.TrimSpace(b))
	return nil
}

// PathElement is one step of an issue path: an object key or an array index.
type PathElement struct {
	Key     string
	Index   int
	IsIndex bool
}

func (p PathElement) String() string {
	if p.IsIndex {
		return strconv.Itoa(p.Index)
	}
	return p.Key
}

// UnmarshalJSON accepts a JSON string or integer.
func (p *PathElement) UnmarshalJSON(b []byte) error {
	var key string
	if err := json.Unmarshal(b, &key); err == nil {
		*p = PathElement{Key: key}
		return nil
	}
	var idx int
	if err := json.Unmarshal(b, &idx); err != nil {
		return fmt.Errorf("path element must be a string or integer: %s", b)
	}
	*p = PathElement{Index: idx, IsIndex: true}
	return nil
}

func (p PathElement) MarshalJSON() ([]byte, error) {
	if p.IsIndex {
		return json.Marshal(p.Index)
	}
	return json.Marshal(p.Key)
}

// errorBody is the server's error envelope. Either field may be populated.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
}

// decodeErrorBody extracts error ?? message from a failed response.
func decodeErrorBody(raw []byte, status int) (*Error, error) {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode error response: %w", err)
	}
	field := body.Error
	if isNullJSON(field) {
		field = body.Message
	}
	if isNullJSON(field) {
		return &Error{Message: http.StatusText(status)}, nil
	}
	var apiErr Error
	if err := json.Unmarshal(field, &apiErr); err != nil {
		return nil, err
	}
	return &apiErr, nil
}

func isNullJSON(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// clientFailure builds the status-0 response for failures that never
// produced a usable server answer.
func clientFailure[T any](err error) Response[T] {
	msg := unknownClientError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Response[T]{Status: 0, Err: &Error{Message: msg}}
}
