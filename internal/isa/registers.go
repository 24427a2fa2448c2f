package isa

// RegisterFile holds the 16 general purpose registers. Each Register is a
// 64-bit value; reads/writes at a given Size zero- or sign-extend/preserve
// the unused high bits as described by spec §3.
type RegisterFile struct {
	R [16]uint64
}

// Read returns the register's value zero-extended at size s.
func (rf *RegisterFile) Read(id RegisterID, s Size) uint64 {
	return rf.R[id] & s.Mask()
}

// ReadSigned returns the register's value sign-extended at size s.
func (rf *RegisterFile) ReadSigned(id RegisterID, s Size) int64 {
	return SignExtend(rf.R[id], s)
}

// Write overwrites the low bits of the register at size s, preserving the
// high bits, per spec §3. Writing the null register is a no-op.
func (rf *RegisterFile) Write(opt OptionalRegister, s Size, value uint64) {
	if opt.None() {
		return
	}
	mask := s.Mask()
	rf.R[opt.ID] = (rf.R[opt.ID] &^ mask) | (value & mask)
}

// ReadOptional reads an OptionalRegister, returning 0 for the null register.
func (rf *RegisterFile) ReadOptional(opt OptionalRegister, s Size) uint64 {
	if opt.None() {
		return 0
	}
	return rf.Read(opt.ID, s)
}

// SignExtend sign-extends the low BitSize(s) bits of v to a full 64-bit value.
func SignExtend(v uint64, s Size) int64 {
	bits := s.BitSize()
	if bits >= 64 {
		return int64(v)
	}
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// SignExtendN sign-extends the low n bits of v (n in [1,64]) to a full 64-bit value.
func SignExtendN(v uint64, n int) int64 {
	if n >= 64 {
		return int64(v)
	}
	shift := 64 - n
	return int64(v<<shift) >> shift
}

// MachineRegister identifies a CPU-internal register accessed via ldm/stm,
// distinct from the 16 general registers.
type MachineRegister uint32

const (
	MRFlags   MachineRegister = 0
	MRElr     MachineRegister = 1
	MREsp     MachineRegister = 2
	MREflags  MachineRegister = 3
	MREinfo   MachineRegister = 4
	MREaddr   MachineRegister = 5
	MREvtable MachineRegister = 6
	MREctable MachineRegister = 7

	// MRVMConsole is a write-only console device: the low byte of any
	// write is printed. It is writable from any privilege level and never
	// readable.
	MRVMConsole MachineRegister = 0xDEAD1
)

var machineRegisterNames = map[string]MachineRegister{
	"flags":      MRFlags,
	"elr":        MRElr,
	"esp":        MREsp,
	"eflags":     MREflags,
	"einfo":      MREinfo,
	"eaddr":      MREaddr,
	"evtable":    MREvtable,
	"ectable":    MREctable,
	"vm_console": MRVMConsole,
}

// LookupMachineRegisterName resolves a machine-register literal name used in
// assembly expressions (spec §6) to its numeric ID.
func LookupMachineRegisterName(name string) (MachineRegister, bool) {
	id, ok := machineRegisterNames[name]
	return id, ok
}

// ExceptionConfigFlags is the flags field of an ExceptionConfigurationEntry.
type ExceptionConfigFlags uint64

// UseStack is the one currently defined bit of ExceptionConfigFlags.
const UseStack ExceptionConfigFlags = 1 << 0

// validExceptionConfigFlagsMask covers every defined bit; any other bit set
// makes an entry invalid.
const validExceptionConfigFlagsMask = UseStack

// ExceptionConfigEntry is one slot of the exception configuration table.
type ExceptionConfigEntry struct {
	Flags         ExceptionConfigFlags
	StackPointer  uint64
	StackSize     uint64
}

// Valid reports whether the entry has no undefined flag bits set.
func (e ExceptionConfigEntry) Valid() bool {
	return e.Flags&^validExceptionConfigFlagsMask == 0
}

// UsesStack reports whether the entry requests a stack switch.
func (e ExceptionConfigEntry) UsesStack() bool {
	return e.Flags&UseStack != 0
}

// ExceptionConfigTable is the 16-entry (8 PL0 + 8 PL1) exception
// configuration table read from guest memory at the `ectable` address.
type ExceptionConfigTable struct {
	PL0 [8]ExceptionConfigEntry
	PL1 [8]ExceptionConfigEntry
}

// exceptionConfigEntrySize is the on-wire byte size of one entry:
// {u64 flags, u64 stack_pointer, u64 stack_size}.
const exceptionConfigEntrySize = 24

// ExceptionConfigTableSize is the total byte size of the packed table.
const ExceptionConfigTableSize = 16 * exceptionConfigEntrySize

// DecodeExceptionConfigTable decodes the on-wire little-endian layout:
// 8 PL0 entries followed by 8 PL1 entries, each 24 bytes. The layout is
// decoded explicitly field by field, independent of any host struct layout.
func DecodeExceptionConfigTable(raw []byte) (ExceptionConfigTable, error) {
	var tbl ExceptionConfigTable
	if len(raw) < ExceptionConfigTableSize {
		return tbl, errShortExceptionConfigTable
	}
	readEntry := func(off int) ExceptionConfigEntry {
		return ExceptionConfigEntry{
			Flags:        ExceptionConfigFlags(leUint64(raw[off:])),
			StackPointer: leUint64(raw[off+8:]),
			StackSize:    leUint64(raw[off+16:]),
		}
	}
	for i := 0; i < 8; i++ {
		tbl.PL0[i] = readEntry(i * exceptionConfigEntrySize)
	}
	for i := 0; i < 8; i++ {
		tbl.PL1[i] = readEntry((8+i)*exceptionConfigEntrySize)
	}
	return tbl, nil
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
