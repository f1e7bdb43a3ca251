// File: internal/carrier/carrier_test.go
package carrier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Carrier
	}{
		{"DTDC", DTDC},
		{"dtdc", DTDC},
		{"  Dtdc Courier ", DTDC},
		{"Delhivery", Delhivery},
		{"DELHIVERY SURFACE", Delhivery},
		{"Delhivery (Recommended)", Delhivery},
		{"DTDC - Surface 5kg", DTDC},
		{"Bluedart", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, FromLabel(tt.label))
		})
	}
}

func TestCarrierKnown(t *testing.T) {
	assert.True(t, DTDC.Known())
	assert.True(t, Delhivery.Known())
	assert.False(t, Unknown.Known())
}
