package violation

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/Alijeyrad/salon_storefront/pkg/transport"
)

type carrierErr struct{ vs []Violation }

func (c *carrierErr) Error() string                { return "carrier" }
func (c *carrierErr) FieldViolations() []Violation { return c.vs }

func TestExtract(t *testing.T) {
	futureBody := []byte(`{"violations":[{"propertyPath":"startAt","message":"must be in the future"}]}`)
	var nilFailure *transport.Failure

	tests := []struct {
		name string
		in   any
		want map[string]string
	}{
		{name: "nil", in: nil, want: map[string]string{}},
		{name: "plain error", in: errors.New("boom"), want: map[string]string{}},
		{name: "string", in: "oops", want: map[string]string{}},
		{name: "int", in: 42, want: map[string]string{}},
		{
			name: "failure with violations",
			in:   &transport.Failure{StatusCode: 422, Body: futureBody},
			want: map[string]string{"startAt": "must be in the future"},
		},
		{
			name: "wrapped failure",
			in:   fmt.Errorf("create: %w", &transport.Failure{StatusCode: 422, Body: futureBody}),
			want: map[string]string{"startAt": "must be in the future"},
		},
		{
			name: "failure without body",
			in:   &transport.Failure{StatusCode: 500},
			want: map[string]string{},
		},
		{
			name: "failure with html body",
			in:   &transport.Failure{StatusCode: 502, Body: []byte("<html>bad gateway</html>")},
			want: map[string]string{},
		},
		{
			name: "failure with violations of wrong shape",
			in:   &transport.Failure{StatusCode: 422, Body: []byte(`{"violations":"nope"}`)},
			want: map[string]string{},
		},
		{name: "typed nil failure", in: nilFailure, want: map[string]string{}},
		{
			name: "carrier",
			in:   &carrierErr{vs: []Violation{{PropertyPath: "clientPhone", Message: "invalid"}}},
			want: map[string]string{"clientPhone": "invalid"},
		},
		{
			name: "duplicate field keeps last",
			in: []Violation{
				{PropertyPath: "clientName", Message: "first"},
				{PropertyPath: "clientName", Message: "second"},
			},
			want: map[string]string{"clientName": "second"},
		},
		{
			name: "empty property path dropped",
			in:   []Violation{{PropertyPath: "", Message: "global"}},
			want: map[string]string{},
		},
		{
			name: "raw body",
			in:   futureBody,
			want: map[string]string{"startAt": "must be in the future"},
		},
		{
			name: "map passthrough",
			in:   map[string]string{"service": "required", "": "dropped"},
			want: map[string]string{"service": "required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("{"), []byte(`{"violations":[]}`), []byte(`[]`)} {
		if got := Parse(raw); got != nil {
			t.Errorf("Parse(%q) = %v, want nil", raw, got)
		}
	}
}
