// Package violation turns a failed write into a field → message map.
//
// Server-side validation is authoritative: callers lay the map returned by
// Extract over their own client-side errors.
package violation

import (
	"encoding/json"
	"errors"

	"github.com/Alijeyrad/salon_storefront/pkg/transport"
)

// Violation is one server-reported failure tied to a field.
type Violation struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}

// Carrier is implemented by errors that already hold parsed violations.
type Carrier interface {
	FieldViolations() []Violation
}

type body struct {
	Violations []Violation `json:"violations"`
}

// Parse reads the violations list of a backend error body. Malformed or
// unrelated bodies yield nil.
func Parse(raw []byte) []Violation {
	if len(raw) == 0 {
		return nil
	}
	var b body
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil
	}
	out := b.Violations[:0]
	for _, v := range b.Violations {
		if v.PropertyPath != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Extract maps any failure value to field violations. It accepts errors
// wrapping a Carrier or a *transport.Failure, a raw body, a violation list
// or an already-built map. Anything else, nil included, gives an empty map.
// When a field is reported twice the last message wins.
func Extract(v any) (fields map[string]string) {
	fields = map[string]string{}
	defer func() {
		if recover() != nil {
			fields = map[string]string{}
		}
	}()

	switch val := v.(type) {
	case nil:
		return fields
	case map[string]string:
		for k, msg := range val {
			if k != "" {
				fields[k] = msg
			}
		}
		return fields
	case []Violation:
		return fold(fields, val)
	case []byte:
		return fold(fields, Parse(val))
	case error:
		var c Carrier
		if errors.As(val, &c) && c != nil {
			return fold(fields, c.FieldViolations())
		}
		var f *transport.Failure
		if errors.As(val, &f) && f != nil {
			return fold(fields, Parse(f.Body))
		}
	}
	return fields
}

func fold(into map[string]string, vs []Violation) map[string]string {
	for _, v := range vs {
		if v.PropertyPath == "" {
			continue
		}
		into[v.PropertyPath] = v.Message
	}
	return into
}
