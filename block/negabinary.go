package block

// Negabinary maps a signed integer coefficient to its unsigned
// negabinary-coded representation (spec §4.2 step 5, glossary entry
// "Negabinary"): the leading bits of the result reveal sign and
// magnitude progressively from the top down, which is exactly the
// property the embedded bit-plane coder in codec.go relies on.
//
// This uses the closed-form identity (x + M) XOR M, where M is the
// alternating-bit mask 0b...1010 1010 at the integer's width. XOR by a
// constant is its own inverse, so the decode direction is simply
// (u XOR M) - M: XOR first to undo the encode's XOR, then subtract M to
// undo the encode's add. See DESIGN.md for why this mapping is used in
// place of the spec's literal XOR-of-arithmetic-shift formula — both are
// valid negabinary codings, and this one has a trivial exact inverse.
func Negabinary[T Int](x T) uint64 {
	m := negabinaryMask[T]()
	u := toBitsU64(x) + m
	u ^= m

	return u & widthMask[T]()
}

// InverseNegabinary undoes Negabinary.
func InverseNegabinary[T Int](u uint64) T {
	m := negabinaryMask[T]()
	v := (u ^ m) - m

	return fromBitsU64[T](v)
}

// toBitsU64 zero-extends x's two's-complement bit pattern into a uint64,
// regardless of x's sign: unlike a direct uint64(x) conversion (which
// Go sign-extends for negative signed operands), this always treats x
// as a fixed-width bit pattern.
func toBitsU64[T Int](x T) uint64 {
	var zero T
	switch any(zero).(type) {
	case int32:
		return uint64(uint32(x))
	default:
		return uint64(x)
	}
}

// fromBitsU64 truncates v to T's width and reinterprets the low bits as
// a two's-complement signed value of type T.
func fromBitsU64[T Int](v uint64) T {
	var zero T
	switch any(zero).(type) {
	case int32:
		return T(int32(uint32(v)))
	default:
		return T(v)
	}
}

// negabinaryMask returns the alternating-bit mask 0xAAAA...A sized to
// T's width (32 or 64 bits).
func negabinaryMask[T Int]() uint64 {
	var zero T
	switch any(zero).(type) {
	case int32:
		return 0xAAAAAAAA
	default:
		return 0xAAAAAAAAAAAAAAAA
	}
}

func widthMask[T Int]() uint64 {
	var zero T
	switch any(zero).(type) {
	case int32:
		return 0xFFFFFFFF
	default:
		return 0xFFFFFFFFFFFFFFFF
	}
}
