package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanObject(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around object", `Sure, here you go: {"intent":"OTHER"} Hope that helps!`, `{"intent":"OTHER"}`, true},
		{"code fence", "```json\n{\"intent\":\"OTHER\"}\n```", `{"intent":"OTHER"}`, true},
		{"nested braces keep maximal span", `x {"a":{"b":1}} y`, `{"a":{"b":1}}`, true},
		{"two objects span both", `{"a":1} and {"b":2}`, `{"a":1} and {"b":2}`, true},
		{"no braces", "I cannot help with that.", "", false},
		{"only opening brace", "{ oops", "", false},
		{"closing before opening", "} then {", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ScanObject(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing key quote", `{intent":"OTHER", entities":[]}`, `{"intent":"OTHER", "entities":[]}`},
		{"trailing comma in list", `{"entities":[{"text":"a","label":"B"},]}`, `{"entities":[{"text":"a","label":"B"}]}`},
		{"trailing comma in object", "{\"intent\":\"OTHER\",\n}", "{\"intent\":\"OTHER\"\n}"},
		{"comma inside string kept", `{"text":"a,]"}`, `{"text":"a,]"}`},
		{"already valid", `{"intent":"OTHER","entities":[]}`, `{"intent":"OTHER","entities":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.in))
		})
	}
}
