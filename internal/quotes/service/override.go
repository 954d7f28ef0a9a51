package service

import (
	"math"

	"angebot_backend/platform/apperr"
)

type overrideKind int

const (
	overrideNone overrideKind = iota
	overrideDirect
	overridePercent
)

// Override is a per-quote, per-module price adjustment. It is a closed sum:
// no override, a direct replacement price, or a percentage adjustment
// (positive = surcharge, negative = discount). The zero value means no
// override, so illegal combinations cannot be represented.
type Override struct {
	kind  overrideKind
	value int64
}

// NoOverride returns the absent override; the module's current base price is
// used at calculation time.
func NoOverride() Override {
	return Override{}
}

// DirectOverride replaces the module's base price with the given amount.
func DirectOverride(amount int64) Override {
	return Override{kind: overrideDirect, value: amount}
}

// PercentOverride adjusts the base price by the given percentage.
func PercentOverride(value int64) Override {
	return Override{kind: overridePercent, value: value}
}

// IsSet reports whether any override mode is active.
func (o Override) IsSet() bool {
	return o.kind != overrideNone
}

// Apply resolves the unit price for a module with the given base price.
// Percentage adjustments round to the nearest whole currency unit, ties away
// from zero (math.Round).
func (o Override) Apply(basePrice int64) int64 {
	switch o.kind {
	case overrideDirect:
		return o.value
	case overridePercent:
		return int64(math.Round(float64(basePrice) * (1 + float64(o.value)/100)))
	default:
		return basePrice
	}
}

// Wire returns the serialized form: type label and value pointer, both empty
// for the absent override. Used when persisting quote-module links.
func (o Override) Wire() (string, *int64) {
	switch o.kind {
	case overrideDirect:
		v := o.value
		return "direct", &v
	case overridePercent:
		v := o.value
		return "percent", &v
	default:
		return "", nil
	}
}

// OverrideFromWire parses the serialized form used on transport and storage.
// A direct override must not be negative; percentage adjustments may be.
func OverrideFromWire(overrideType string, value *int64) (Override, error) {
	switch overrideType {
	case "":
		return NoOverride(), nil
	case "direct":
		if value == nil {
			return Override{}, apperr.Validation("direct override requires a value")
		}
		if *value < 0 {
			return Override{}, apperr.Validation("direct override must not be negative")
		}
		return DirectOverride(*value), nil
	case "percent":
		if value == nil {
			return Override{}, apperr.Validation("percent override requires a value")
		}
		return PercentOverride(*value), nil
	default:
		return Override{}, apperr.Validation("unknown override type")
	}
}
