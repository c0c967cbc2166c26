// Package calc is the pricing calculation engine: a pure, stateless
// transformation of a quote's commercial, logistics, customs, and financing
// inputs into client-facing prices, profit, and margin.
//
// The package is a frozen contract. Schema or naming drift in upstream data
// is absorbed by the mapping layer (internal/mapping), never by changing the
// types or phase formulas here. The engine performs no I/O, reads no clock,
// and keeps all intermediate values in unrounded USD decimals; currency
// conversion happens exactly once, at the input boundary.
package calc
