package vmcore

import (
	"testing"

	"github.com/lookbusy1344/acca/internal/isa"
)

func TestAddCarryByteWidth(t *testing.T) {
	if !addCarry(0xFF, 0x01, false, isa.Byte) {
		t.Error("0xFF + 0x01 at byte width should carry")
	}
	if addCarry(0x01, 0x01, false, isa.Byte) {
		t.Error("0x01 + 0x01 at byte width should not carry")
	}
	if !addCarry(0xFE, 0x01, true, isa.Byte) {
		t.Error("0xFE + 0x01 + cin at byte width should carry")
	}
}

func TestAddOverflowSignedByteWidth(t *testing.T) {
	// 0x7F + 0x01 = 0x80: positive + positive = negative, overflow.
	if !addOverflow(0x7F, 0x01, false, isa.Byte) {
		t.Error("0x7F + 0x01 should signed-overflow at byte width")
	}
	if addOverflow(0x01, 0x01, false, isa.Byte) {
		t.Error("0x01 + 0x01 should not signed-overflow")
	}
}

func TestSubBorrowByteWidth(t *testing.T) {
	if !subBorrow(0x00, 0x01, false, isa.Byte) {
		t.Error("0 - 1 at byte width should borrow")
	}
	if subBorrow(0x02, 0x01, false, isa.Byte) {
		t.Error("2 - 1 should not borrow")
	}
}

func TestSubOverflowSignedByteWidth(t *testing.T) {
	// -128 - 1 = -129, overflows signed byte range.
	if !subOverflow(0x80, 0x01, false, isa.Byte) {
		t.Error("-128 - 1 should signed-overflow at byte width")
	}
}

func TestNZFromResult(t *testing.T) {
	zero, sign := nzFromResult(0, isa.Word)
	if !zero || sign {
		t.Errorf("nzFromResult(0) = (%v,%v), want (true,false)", zero, sign)
	}
	zero, sign = nzFromResult(0x80, isa.Byte)
	if zero || !sign {
		t.Errorf("nzFromResult(0x80, byte) = (%v,%v), want (false,true)", zero, sign)
	}
}
