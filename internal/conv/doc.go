// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer
// overflow/underflow when converting between Go's int and the fixed-width
// unsigned types the PCD wire format uses (header counts, compressed-size
// prefixes). For conversions that are provably safe by domain constraints,
// use direct type casts instead.
package conv
