// File: internal/carrier/carrier.go

// Package carrier models the two shipping carriers the panel can sync an
// order with and resolves pincodes to one of them using spreadsheet-backed
// serviceability sets.
package carrier

import "strings"

// Carrier identifies a shipping provider.
type Carrier string

const (
	DTDC      Carrier = "DTDC"
	Delhivery Carrier = "Delhivery"
	Unknown   Carrier = "Unknown"
)

// labelMap maps the display strings the panel renders in its carrier
// dropdown (and the values operators type into the override) to carrier
// identities. Kept as an explicit table rather than inline regexes so new
// display variants are a one-line change.
var labelMap = map[string]Carrier{
	"dtdc":              DTDC,
	"dtdc courier":      DTDC,
	"dtdc surface":      DTDC,
	"delhivery":         Delhivery,
	"delhivery surface": Delhivery,
	"delhivery express": Delhivery,
}

// FromLabel maps a UI display string or operator-supplied name to a Carrier.
// Matching is case-insensitive and tolerates surrounding text; unrecognized
// labels map to Unknown.
func FromLabel(label string) Carrier {
	norm := strings.ToLower(strings.TrimSpace(label))
	if c, ok := labelMap[norm]; ok {
		return c
	}
	// Panels decorate option labels ("Delhivery (Recommended)"); fall back to
	// a substring check against the known names.
	switch {
	case strings.Contains(norm, "dtdc"):
		return DTDC
	case strings.Contains(norm, "delhivery"):
		return Delhivery
	}
	return Unknown
}

// String implements fmt.Stringer.
func (c Carrier) String() string { return string(c) }

// Known reports whether c is one of the two real carriers.
func (c Carrier) Known() bool { return c == DTDC || c == Delhivery }
