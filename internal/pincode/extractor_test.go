// File: internal/pincode/extractor_test.go
package pincode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "labelled pincode",
			raw:  "John Doe, Kottayam House, Kerala\nPincode: 689672\nPhone: 9847012345",
			want: []string{"689672"},
		},
		{
			name: "labelled without separator",
			raw:  "Address ... Pincode 686001",
			want: []string{"686001"},
		},
		{
			name: "labelled with dash",
			raw:  "PINCODE- 682020",
			want: []string{"682020"},
		},
		{
			name: "multiple labelled occurrences keep order",
			raw:  "Pincode: 686001 and shipping Pincode: 689672",
			want: []string{"686001", "689672"},
		},
		{
			name: "labelled duplicates collapse",
			raw:  "Pincode: 686001\nPincode: 686001",
			want: []string{"686001"},
		},
		{
			name: "labelled match wins over bare runs",
			raw:  "Order 12345678 ... Pincode: 686001 ... phone 98470",
			want: []string{"686001"},
		},
		{
			name: "bare run fallback",
			raw:  "Flat 2B, MG Road, Kochi 682016",
			want: []string{"682016"},
		},
		{
			name: "adjacent bare runs both found",
			raw:  "zones 1234 5678",
			want: []string{"1234", "5678"},
		},
		{
			name: "no digits",
			raw:  "no address available",
			want: nil,
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			raw:  "   \n\t ",
			want: nil,
		},
		{
			name: "labelled below four digit floor is ignored",
			raw:  "Pincode:12",
			want: nil,
		},
		{
			name: "labelled too short but bare run elsewhere",
			raw:  "Pincode:12 ... warehouse 68601",
			want: []string{"68601"},
		},
		{
			name: "seven digit run is not a pincode",
			raw:  "ref 1234567",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.raw))
		})
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	raw := "Pincode: 689672, alt Pincode: 686001"
	first := Extract(raw)
	second := Extract(raw)
	assert.Equal(t, first, second)
}

func TestFirst(t *testing.T) {
	assert.Equal(t, "689672", First("Pincode: 689672 something"))
	assert.Equal(t, "", First("nothing here"))
}
