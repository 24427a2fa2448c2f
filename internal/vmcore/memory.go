package vmcore

import (
	"fmt"

	"github.com/lookbusy1344/acca/internal/isa"
)

// Memory is the guest's flat, little-endian address space. Unlike the
// teacher's segmented model, acca's address space is a single region
// sized by configuration; out-of-range or misaligned accesses are
// reported to the caller as faults (the caller turns them into guest
// exceptions), never as host panics.
type Memory struct {
	buf []byte
}

// NewMemory allocates sizeBytes of zeroed guest memory.
func NewMemory(sizeBytes uint64) *Memory {
	return &Memory{buf: make([]byte, sizeBytes)}
}

// Size returns the memory's capacity in bytes.
func (m *Memory) Size() uint64 { return uint64(len(m.buf)) }

func (m *Memory) inRange(addr isa.VMAddress, n int) bool {
	a := uint64(addr)
	return a+uint64(n) >= a && a+uint64(n) <= uint64(len(m.buf))
}

// ReadBytes copies n bytes starting at addr, reporting a fault if any
// byte falls outside the mapped region.
func (m *Memory) ReadBytes(addr isa.VMAddress, n int) ([]byte, bool) {
	if !m.inRange(addr, n) {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, m.buf[addr:uint64(addr)+uint64(n)])
	return out, true
}

// WriteBytes writes data at addr, reporting a fault if it would run past
// the mapped region.
func (m *Memory) WriteBytes(addr isa.VMAddress, data []byte) error {
	if !m.inRange(addr, len(data)) {
		return fmt.Errorf("vmcore: write of %d bytes at %#x out of range (size %#x)", len(data), addr, len(m.buf))
	}
	copy(m.buf[addr:], data)
	return nil
}

// ReadSized reads s.ByteSize() bytes at addr as a little-endian unsigned
// value.
func (m *Memory) ReadSized(addr isa.VMAddress, s isa.Size) (uint64, bool) {
	n := s.ByteSize()
	raw, ok := m.ReadBytes(addr, n)
	if !ok {
		return 0, false
	}
	var v uint64
	for i := 0; i < n; i++ {
		v |= uint64(raw[i]) << (8 * i)
	}
	return v, true
}

// WriteSized writes the low s.ByteSize() bytes of v at addr, little-endian.
func (m *Memory) WriteSized(addr isa.VMAddress, v uint64, s isa.Size) bool {
	n := s.ByteSize()
	if !m.inRange(addr, n) {
		return false
	}
	for i := 0; i < n; i++ {
		m.buf[uint64(addr)+uint64(i)] = byte(v >> (8 * i))
	}
	return true
}

// ReadWord reads a 32-bit instruction word, requiring 4-byte alignment.
func (m *Memory) ReadWord(addr isa.VMAddress) (uint32, bool) {
	if !addr.AlignedTo4() {
		return 0, false
	}
	v, ok := m.ReadSized(addr, isa.QuadByte)
	return uint32(v), ok
}
