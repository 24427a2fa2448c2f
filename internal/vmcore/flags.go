package vmcore

import "github.com/lookbusy1344/acca/internal/isa"

// addCarry reports unsigned overflow of a+b+cin at the given width.
func addCarry(a, b uint64, cin bool, s isa.Size) bool {
	mask := s.Mask()
	a &= mask
	b &= mask
	sum := a + b
	if cin {
		sum++
	}
	return sum > mask || sum < a
}

// addOverflow reports signed overflow of a+b+cin at the given width.
func addOverflow(a, b uint64, cin bool, s isa.Size) bool {
	bits := s.BitSize()
	signBit := uint64(1) << uint(bits-1)
	aSign := a&signBit != 0
	bSign := b&signBit != 0
	result := a + b
	if cin {
		result++
	}
	result &= s.Mask()
	rSign := result&signBit != 0
	return aSign == bSign && aSign != rSign
}

// subBorrow reports whether a-b-bin required a borrow (no-carry-out) at
// the given width: true means a borrow occurred.
func subBorrow(a, b uint64, bin bool, s isa.Size) bool {
	mask := s.Mask()
	a &= mask
	b &= mask
	need := b
	if bin {
		need++
	}
	return a < need
}

// subOverflow reports signed overflow of a-b-bin at the given width.
func subOverflow(a, b uint64, bin bool, s isa.Size) bool {
	bits := s.BitSize()
	signBit := uint64(1) << uint(bits-1)
	aSign := a&signBit != 0
	bSign := b&signBit != 0
	result := a - b
	if bin {
		result--
	}
	result &= s.Mask()
	rSign := result&signBit != 0
	return aSign != bSign && aSign != rSign
}

// nzFromResult computes the zero and sign flags for a result at size s.
func nzFromResult(result uint64, s isa.Size) (zero, sign bool) {
	masked := result & s.Mask()
	zero = masked == 0
	sign = masked&(uint64(1)<<uint(s.BitSize()-1)) != 0
	return zero, sign
}
