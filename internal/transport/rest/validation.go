package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// issue mirrors one field-level failure on the wire.
type issue struct {
	Code     string `json:"code"`
	Expected string `json:"expected,omitempty"`
	Received string `json:"received,omitempty"`
	Path     []any  `json:"path"`
	Message  string `json:"message"`
}

type validationError struct {
	Name   string  `json:"name"`
	Issues []issue `json:"issues"`
}

// issues accumulates validation failures for one request.
type issues []issue

func (is *issues) add(i issue) { *is = append(*is, i) }

func (is *issues) invalidType(path []any, expected, received string) {
	is.add(issue{
		Code:     "invalid_type",
		Expected: expected,
		Received: received,
		Path:     path,
		Message:  fmt.Sprintf("Expected %s, received %s", expected, received),
	})
}

func (is *issues) tooSmall(path []any, minimum int) {
	is.add(issue{
		Code:    "too_small",
		Path:    path,
		Message: fmt.Sprintf("Number must be greater than or equal to %d", minimum),
	})
}

// write sends 400 with the accumulated issues. Returns false if there were none.
func (is issues) write(w http.ResponseWriter) bool {
	if len(is) == 0 {
		return false
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": validationError{Name: "ValidationError", Issues: is},
	})
	return true
}

// intParam parses an optional non-negative integer query parameter.
func (is *issues) intParam(r *http.Request, key string, def int) int {
	raw, ok := r.URL.Query()[key]
	if !ok || len(raw) == 0 {
		return def
	}
	n, err := strconv.Atoi(raw[0])
	if err != nil {
		is.invalidType([]any{key}, "integer", receivedKind(raw[0]))
		return def
	}
	if n < 0 {
		is.tooSmall([]any{key}, 0)
		return def
	}
	return n
}

// idParam parses the {id} path segment.
func (is *issues) idParam(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		is.invalidType([]any{"id"}, "integer", receivedKind(raw))
		return 0
	}
	if id < 0 {
		is.tooSmall([]any{"id"}, 0)
		return 0
	}
	return id
}

// topK checks an optional topK body field.
func (is *issues) topK(v *int, def int) int {
	if v == nil {
		return def
	}
	if *v < 1 {
		is.tooSmall([]any{"topK"}, 1)
		return def
	}
	return *v
}

// decodeBody decodes a JSON body into dst. An empty body is allowed when optional.
func (is *issues) decodeBody(r *http.Request, dst any, optional bool) {
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && optional:
	case errors.Is(err, io.EOF):
		is.invalidType([]any{}, "object", "undefined")
	default:
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			is.invalidType([]any{typeErr.Field}, typeErr.Type.Kind().String(), typeErr.Value)
			return
		}
		is.add(issue{Code: "invalid_json", Path: []any{}, Message: err.Error()})
	}
}

func receivedKind(raw string) string {
	switch raw {
	case "true", "false":
		return "boolean"
	case "":
		return "undefined"
	}
	if _, err := strconv.ParseFloat(raw, 64); err == nil {
		return "number"
	}
	return "string"
}
