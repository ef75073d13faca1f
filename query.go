package docindex

import (
	"fmt"
	"strings"

	"github.com/oapi-codegen/runtime"
)

// queryParam is one query string entry. A nil value means "not set".
type queryParam struct {
	key   string
	value any
}

// optional turns an optional field into a query entry, nil when unset.
func optional[T any](key string, v *T) queryParam {
	if v == nil {
		return queryParam{key: key}
	}
	return queryParam{key: key, value: *v}
}

// compactParams drops unset entries and keeps the order of the rest.
func compactParams(in ...queryParam) []queryParam {
	out := make([]queryParam, 0, len(in))
	for _, p := range in {
		if p.value == nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// encodeQuery appends params to an existing raw query, in order,
// using form style like the generated OpenAPI clients.
func encodeQuery(rawQuery string, params []queryParam) (string, error) {
	frags := make([]string, 0, len(params)+1)
	if rawQuery != "" {
		frags = append(frags, rawQuery)
	}
	for _, p := range params {
		frag, err := runtime.StyleParamWithLocation("form", true, p.key, runtime.ParamLocationQuery, p.value)
		if err != nil {
			return "", fmt.Errorf("encode query param %q: %w", p.key, err)
		}
		frags = append(frags, frag)
	}
	return strings.Join(frags, "&"), nil
}
