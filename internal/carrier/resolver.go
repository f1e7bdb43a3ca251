// File: internal/carrier/resolver.go
package carrier

import (
	"go.uber.org/zap"

	"github.com/avikamboj/ordersync-cli/internal/pincode"
)

// Decision is the outcome of resolving a pincode to a carrier.
type Decision struct {
	Carrier Carrier
	Pincode string
	// OverrideMismatch is set when an operator override is active but the
	// pincode is outside that carrier's coverage. Such orders are skipped
	// from carrier sync entirely, never force-assigned.
	OverrideMismatch bool
}

// Resolver applies the carrier-selection policy: operator override first,
// then DTDC, then Delhivery, else Unknown. A pincode present in both sets
// resolves to DTDC; first-checked wins and that order is deliberate.
type Resolver struct {
	store    *LookupStore
	override Carrier
	logger   *zap.Logger
}

// NewResolver builds a resolver over the lookup store. overrideName is the
// raw operator-supplied carrier name; unrecognized values disable the
// override and normal resolution applies.
func NewResolver(store *LookupStore, overrideName string, logger *zap.Logger) *Resolver {
	override := Unknown
	if overrideName != "" {
		override = FromLabel(overrideName)
		if !override.Known() {
			logger.Warn("Ignoring unrecognized carrier override.", zap.String("override", overrideName))
			override = Unknown
		}
	}
	return &Resolver{
		store:    store,
		override: override,
		logger:   logger.Named("resolver"),
	}
}

// Override returns the active override carrier, or Unknown when none is set.
func (r *Resolver) Override() Carrier { return r.override }

// Resolve decides the carrier for pin. When pin is empty, contextText (any
// surrounding page text the caller has on hand) is scanned for a recoverable
// pincode before giving up.
func (r *Resolver) Resolve(pin, contextText string) Decision {
	if pin == "" && contextText != "" {
		if recovered := pincode.First(contextText); recovered != "" {
			r.logger.Debug("Recovered pincode from surrounding context.", zap.String("pincode", recovered))
			pin = recovered
		}
	}

	if r.override.Known() {
		if pin != "" && r.store.Serves(r.override, pin) {
			return Decision{Carrier: r.override, Pincode: pin}
		}
		// Operator pinned the run to one carrier; out-of-coverage orders must
		// surface as a distinct skip, not silently default.
		return Decision{Carrier: Unknown, Pincode: pin, OverrideMismatch: true}
	}

	if pin == "" {
		return Decision{Carrier: Unknown}
	}

	switch {
	case r.store.Serves(DTDC, pin):
		return Decision{Carrier: DTDC, Pincode: pin}
	case r.store.Serves(Delhivery, pin):
		return Decision{Carrier: Delhivery, Pincode: pin}
	}
	return Decision{Carrier: Unknown, Pincode: pin}
}
