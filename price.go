package nlx402

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Price is the value sent in the x-total-price header of a quote request.
// The facilitator decides what it means and whether it is valid; the client
// only converts it to its string form.
//
// The zero Price is unset and sends the default, 0.5.
type Price struct {
	value string
	set   bool
}

// PriceFromString forwards s verbatim.
func PriceFromString(s string) Price {
	return Price{value: s, set: true}
}

// PriceFromFloat uses the shortest decimal form that round-trips f,
// so 0.002 is sent as "0.002".
func PriceFromFloat(f float64) Price {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Price{value: strconv.FormatFloat(f, 'g', -1, 64), set: true}
	}
	return Price{value: decimal.NewFromFloat(f).String(), set: true}
}

// PriceFromInt sends n in base 10.
func PriceFromInt(n int64) Price {
	return Price{value: strconv.FormatInt(n, 10), set: true}
}

// PriceFromDecimal sends d in plain (non-exponent) decimal notation.
func PriceFromDecimal(d decimal.Decimal) Price {
	return Price{value: d.String(), set: true}
}

// IsSet reports whether p was explicitly constructed.
func (p Price) IsSet() bool {
	return p.set
}

// String returns the header value: the explicit value, or 0.5 when unset.
func (p Price) String() string {
	if !p.set {
		return DefaultTotalPrice
	}
	return p.value
}

// Decimal parses the header value as a decimal number.
func (p Price) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(p.String())
}
