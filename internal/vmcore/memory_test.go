package vmcore

import (
	"testing"

	"github.com/lookbusy1344/acca/internal/isa"
)

func TestMemoryReadWriteSizedRoundTrip(t *testing.T) {
	m := NewMemory(64)
	if !m.WriteSized(8, 0x1122334455667788, isa.Word) {
		t.Fatal("WriteSized failed in-range")
	}
	v, ok := m.ReadSized(8, isa.Word)
	if !ok || v != 0x1122334455667788 {
		t.Fatalf("ReadSized = %#x, %v, want %#x, true", v, ok, 0x1122334455667788)
	}
}

func TestMemoryOutOfRangeFails(t *testing.T) {
	m := NewMemory(16)
	if _, ok := m.ReadBytes(10, 16); ok {
		t.Error("expected out-of-range ReadBytes to fail")
	}
	if err := m.WriteBytes(10, make([]byte, 16)); err == nil {
		t.Error("expected out-of-range WriteBytes to fail")
	}
}

func TestMemoryReadWordRequiresAlignment(t *testing.T) {
	m := NewMemory(16)
	if _, ok := m.ReadWord(2); ok {
		t.Error("expected ReadWord at an unaligned address to fail")
	}
	if _, ok := m.ReadWord(4); !ok {
		t.Error("expected ReadWord at an aligned address to succeed")
	}
}

func TestMemoryLittleEndian(t *testing.T) {
	m := NewMemory(16)
	m.WriteSized(0, 0xAABBCCDD, isa.QuadByte)
	raw, _ := m.ReadBytes(0, 4)
	want := []byte{0xDD, 0xCC, 0xBB, 0xAA}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, raw[i], want[i])
		}
	}
}
