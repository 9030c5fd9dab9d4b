// Package stream holds the compression parameters that govern every
// block a driver encodes or decodes (spec §3's minbits/maxbits/maxprec/
// minexp quadruple) and the five named modes spec §4.4 exposes for
// setting them together: fixed-rate, fixed-precision, fixed-accuracy,
// reversible, and expert.
//
// Params deliberately does not use a generic functional-options
// pattern (contrast with, say, a teacher-style Option[T] composer):
// the five setters are not independent, freely-composable toggles —
// each is a complete, mutually exclusive policy that derives all four
// fields together and returns the effective value(s) actually in
// force, which later setters must be free to reject or recompute
// rather than merge with. See DESIGN.md for the full reasoning.
package stream

import (
	"fmt"

	"github.com/zfpgo/zfp/scalar"
)

// ExecPolicy selects how a driver traverses a field's blocks.
type ExecPolicy uint8

const (
	// ExecSerial processes blocks one at a time on the calling goroutine.
	ExecSerial ExecPolicy = iota
	// ExecThreaded partitions the field across a worker pool of disjoint
	// writer views (spec §5).
	ExecThreaded
	// ExecOffload first asks a pluggable OffloadBackend to handle the
	// field, falling back to ExecSerial when the backend declines
	// (spec §5, §7).
	ExecOffload
)

// Unbounded is the sentinel MaxBits value meaning "no cap other than
// maxprec/minexp" (spec §3: maxbits defaults to unlimited).
const Unbounded = 1 << 30

// Params is the fully-resolved set of knobs a single compress/decompress
// call needs, valid for one scalar kind (spec §3).
type Params struct {
	Kind scalar.Kind

	MinBits int
	MaxBits int
	MaxPrec int
	MinExp  int

	WordBits int
	Exec     ExecPolicy
}

// defaultParams returns a Params for kind with the widest legal ranges,
// the starting point every mode setter narrows from.
func defaultParams(kind scalar.Kind) (Params, scalar.Trait, error) {
	tr, err := scalar.For(kind)
	if err != nil {
		return Params{}, scalar.Trait{}, err
	}

	return Params{
		Kind:     kind,
		MinBits:  0,
		MaxBits:  Unbounded,
		MaxPrec:  scalar.MaxPrecBound,
		MinExp:   tr.MinExpFloor,
		WordBits: 64,
		Exec:     ExecSerial,
	}, tr, nil
}

// SetRate configures fixed-rate mode: every block of kind occupies
// exactly B = round_to_word_multiple(rateBitsPerValue * block size) bits
// (spec §4.4), where the word multiple is the stream's default word size
// (64 bits). Rounding up to a whole word here — rather than leaving it to
// a later Align() call in the driver — is what lets a compressed array
// compute a block's byte offset as b*B/8 without ever needing to consult
// the driver (spec §4.5). It returns the effective rate actually used
// after rounding.
func SetRate(kind scalar.Kind, dim int, rateBitsPerValue float64) (Params, float64, error) {
	p, _, err := defaultParams(kind)
	if err != nil {
		return Params{}, 0, err
	}
	if dim < 1 || dim > 4 {
		return Params{}, 0, fmt.Errorf("stream: dimension %d out of range [1,4]", dim)
	}
	if rateBitsPerValue <= 0 {
		return Params{}, 0, fmt.Errorf("stream: rate must be positive, got %f", rateBitsPerValue)
	}

	blockSize := 1
	for i := 0; i < dim; i++ {
		blockSize *= 4
	}

	bits := int(rateBitsPerValue*float64(blockSize) + 0.5)
	if bits < 1 {
		bits = 1
	}
	word := p.WordBits
	bits = ((bits + word - 1) / word) * word

	p.MinBits = bits
	p.MaxBits = bits
	p.MaxPrec = scalar.MaxPrecBound
	effective := float64(bits) / float64(blockSize)

	return p, effective, nil
}

// SetPrecision configures fixed-precision mode: every block is coded to
// at most prec bits of precision per coefficient, with no explicit rate
// or accuracy cap. It returns the effective precision (clamped to
// [1, MaxPrecBound]).
func SetPrecision(kind scalar.Kind, prec int) (Params, int, error) {
	p, _, err := defaultParams(kind)
	if err != nil {
		return Params{}, 0, err
	}

	if prec < 1 {
		prec = 1
	}
	if prec > scalar.MaxPrecBound {
		prec = scalar.MaxPrecBound
	}

	p.MaxPrec = prec

	return p, prec, nil
}

// SetAccuracy configures fixed-accuracy mode: blocks are coded only down
// to the bit plane implied by the requested absolute error tolerance,
// tol. This mode is only meaningful for floating-point kinds (spec
// §4.4); calling it with an integer kind is an error.
func SetAccuracy(kind scalar.Kind, tol float64) (Params, int, error) {
	p, tr, err := defaultParams(kind)
	if err != nil {
		return Params{}, 0, err
	}
	if !tr.IsFloat {
		return Params{}, 0, fmt.Errorf("stream: fixed-accuracy mode requires a floating-point kind, got %v", kind)
	}
	if tol <= 0 {
		return Params{}, 0, fmt.Errorf("stream: tolerance must be positive, got %g", tol)
	}

	minExp := exponentOf(tol)
	if minExp < tr.MinExpFloor {
		minExp = tr.MinExpFloor
	}

	p.MinExp = minExp
	p.MaxPrec = scalar.MaxPrecBound

	return p, minExp, nil
}

// exponentOf returns floor(log2(x)) for x > 0 without importing math in
// this file's public surface (kept local since it's only needed here).
func exponentOf(x float64) int {
	e := 0
	if x >= 1 {
		for x >= 2 {
			x /= 2
			e++
		}
	} else {
		for x < 1 {
			x *= 2
			e--
		}
	}

	return e
}

// SetReversible configures lossless mode: every coefficient is coded to
// full integer precision and minexp is pushed to its floor (spec §4.4).
// Floating-point kinds still pass through the same rounding float→integer
// block mapping as the other modes, so their round trips are not
// bit-exact; only the integer kinds skip that mapping.
func SetReversible(kind scalar.Kind) (Params, error) {
	p, tr, err := defaultParams(kind)
	if err != nil {
		return Params{}, err
	}

	p.MaxPrec = scalar.MaxPrecBound
	p.MinExp = tr.MinExpFloor
	p.MaxBits = Unbounded

	return p, nil
}

// SetExpert configures all four parameters directly, for callers who
// need behavior the four named modes don't expose. It validates spec
// §3's invariants and rejects an inverted minbits/maxbits range as a
// configuration error (see DESIGN.md, Open Question (a)).
func SetExpert(kind scalar.Kind, minBits, maxBits, maxPrec, minExp int) (Params, error) {
	p, tr, err := defaultParams(kind)
	if err != nil {
		return Params{}, err
	}

	if minBits < 0 {
		return Params{}, fmt.Errorf("stream: minbits must be >= 0, got %d", minBits)
	}
	if maxBits < minBits {
		return Params{}, fmt.Errorf("stream: maxbits (%d) must be >= minbits (%d)", maxBits, minBits)
	}
	if maxPrec < 1 || maxPrec > scalar.MaxPrecBound {
		return Params{}, fmt.Errorf("stream: maxprec must be in [1,%d], got %d", scalar.MaxPrecBound, maxPrec)
	}
	if minExp < tr.MinExpFloor {
		return Params{}, fmt.Errorf("stream: minexp %d below floor %d for %v", minExp, tr.MinExpFloor, kind)
	}

	p.MinBits = minBits
	p.MaxBits = maxBits
	p.MaxPrec = maxPrec
	p.MinExp = minExp

	return p, nil
}

// EffectiveBitsPerBlock returns the number of bits a block of the given
// dimensionality consumes under fixed-rate params (p.MinBits ==
// p.MaxBits); it is meaningless for any other mode and panics if the two
// differ, since only fixed-rate guarantees a constant per-block size.
func (p Params) EffectiveBitsPerBlock(dim int) int {
	if p.MinBits != p.MaxBits {
		panic("stream: EffectiveBitsPerBlock called on non-fixed-rate Params")
	}

	return p.MinBits
}

// BlockSize returns 4^dim, the number of scalars in one block.
func BlockSize(dim int) int {
	n := 1
	for i := 0; i < dim; i++ {
		n *= 4
	}

	return n
}
