package vmcore

import (
	"fmt"

	"github.com/lookbusy1344/acca/internal/isa"
)

// ExceptionID is the 3-bit cause code that drives einfo[2:0], the ectable
// slot, and the id*32 vector offset, all at once.
type ExceptionID uint8

const (
	ExcUnknown ExceptionID = iota
	ExcInvalidInstruction
	ExcDebug // raised by `dbg`
	ExcUser  // raised explicitly by `exc imm16`
	ExcInvalidOperation
	ExcInstructionLoadError
	ExcDataLoadError
	ExcInterrupt // reserved: no instruction raises this yet
)

var exceptionNames = [...]string{
	"unknown", "invalid-instruction", "debug", "user",
	"invalid-operation", "instruction-load-error", "data-load-error",
	"interrupt",
}

func (id ExceptionID) String() string {
	if int(id) < len(exceptionNames) {
		return exceptionNames[id]
	}
	return fmt.Sprintf("exception(%d)", uint8(id))
}

// Exception is a guest-visible fault: a value the executor raises and the
// VM vectors through the exception configuration table, not a host error.
//
// Elr is always the address to record in the elr machine register — the
// raising instruction's own address for every cause except User, whose
// spec semantics advance IP past the `exc` instruction first.
type Exception struct {
	ID  ExceptionID
	Elr isa.VMAddress

	// Addr is the faulting data address, recorded in eaddr. Only
	// DataLoadError carries a meaningful one; every other cause reports 0.
	Addr isa.VMAddress

	UserValue      uint64 // User(v): the `exc` instruction's imm16
	InterruptValue uint64 // Interrupt(v): reserved, unused

	Write bool     // DataLoadError: true if the faulting access was a store
	Size  isa.Size // DataLoadError: size of the faulting access
}

// einfo packs an Exception's cause code and kind-specific payload into the
// layout read back through the `einfo` machine register.
func (e Exception) einfo() uint64 {
	switch e.ID {
	case ExcUser:
		return uint64(ExcUser) | e.UserValue<<3
	case ExcDataLoadError:
		write := uint64(0)
		if e.Write {
			write = 1
		}
		return uint64(ExcDataLoadError) | write<<3 | uint64(e.Size)<<4
	case ExcInterrupt:
		return uint64(ExcInterrupt) | e.InterruptValue<<3
	default:
		return uint64(e.ID)
	}
}

// privilegeOffset is the byte offset of a privilege level's 8-entry region
// within the vector table: PL0 handlers occupy the first 256 bytes, PL1
// handlers the next 256.
func privilegeOffset(p isa.Privilege) uint64 {
	if p == isa.PL1 {
		return 8 * 32
	}
	return 0
}

// loadExceptionConfigTable decodes the guest's exception configuration
// table from memory at vm.Ectable.
func (vm *VM) loadExceptionConfigTable() (isa.ExceptionConfigTable, bool) {
	return readExceptionConfigTable(vm.Memory, vm.Ectable)
}

// readExceptionConfigTable decodes an exception configuration table from an
// arbitrary address, so both raise() (reading the live table) and `stm
// ectable` (validating a candidate table before committing to it) share one
// decode path.
func readExceptionConfigTable(mem *Memory, addr isa.VMAddress) (isa.ExceptionConfigTable, bool) {
	raw, ok := mem.ReadBytes(addr, isa.ExceptionConfigTableSize)
	if !ok {
		return isa.ExceptionConfigTable{}, false
	}
	tbl, err := isa.DecodeExceptionConfigTable(raw)
	if err != nil {
		return isa.ExceptionConfigTable{}, false
	}
	return tbl, true
}

// validExceptionConfigTable reports whether every entry of tbl has only
// defined flag bits set, per spec's "stm to ectable validates every entry".
func validExceptionConfigTable(tbl isa.ExceptionConfigTable) bool {
	for _, e := range tbl.PL0 {
		if !e.Valid() {
			return false
		}
	}
	for _, e := range tbl.PL1 {
		if !e.Valid() {
			return false
		}
	}
	return true
}

// raise vectors an exception per spec §4.E: save elr/eflags/esp, compute
// einfo/eaddr, clear exceptions-enabled, escalate to PL0, select the
// configured handler for the previous privilege level, optionally switch
// stacks, and jump. A fault that cannot be vectored (configuration table
// unreachable, or its entry for this exception invalid) halts the VM —
// there is no deeper handler to fall back to. The vector table address
// itself is not checked here.
func (vm *VM) raise(exc Exception) error {
	oldPrivilege := vm.CPU.Flags.Privilege()

	tbl, ok := vm.loadExceptionConfigTable()
	if !ok {
		vm.State = StateFatal
		return fmt.Errorf("vmcore: cannot vector %s: exception configuration table unreachable at %#x", exc.ID, vm.Ectable)
	}

	var entries *[8]isa.ExceptionConfigEntry
	if oldPrivilege == isa.PL1 {
		entries = &tbl.PL1
	} else {
		entries = &tbl.PL0
	}
	if int(exc.ID) >= len(entries) {
		vm.State = StateFatal
		return fmt.Errorf("vmcore: exception id %d out of range", exc.ID)
	}
	entry := entries[exc.ID]
	if !entry.Valid() {
		vm.State = StateFatal
		return fmt.Errorf("vmcore: %s: exception configuration entry is invalid", exc.ID)
	}

	vm.Elr = exc.Elr
	vm.Eflags = vm.CPU.Flags
	vm.Esp = vm.CPU.Regs.Read(isa.SP, isa.Word)
	vm.Einfo = exc.einfo()
	if exc.ID == ExcDataLoadError {
		vm.Eaddr = exc.Addr
	} else {
		vm.Eaddr = 0
	}

	vm.CPU.Flags &^= isa.FlagExceptionsEnabled
	vm.CPU.Flags &^= isa.FlagPrivilegeLevel // PL0

	if entry.UsesStack() {
		sp := vm.CPU.Regs.Read(isa.SP, isa.Word)
		lo, hi := entry.StackPointer, entry.StackPointer+entry.StackSize
		if sp < lo || sp >= hi {
			vm.CPU.Regs.Write(isa.SomeRegister(isa.SP), isa.Word, hi)
		}
	}

	vm.CPU.IP = vm.Evtable + isa.VMAddress(privilegeOffset(oldPrivilege)) + isa.VMAddress(exc.ID)*32
	return nil
}

// eret restores the pre-exception context, per spec §4.D's `eret`
// instruction semantics. Under this VM's IP-pre-increment convention, elr
// already holds the exact address to resume at, so no further adjustment
// is needed.
func (vm *VM) eret() {
	vm.CPU.Flags = vm.Eflags
	vm.CPU.IP = vm.Elr
	vm.CPU.Regs.Write(isa.SomeRegister(isa.SP), isa.Word, vm.Esp)
}
