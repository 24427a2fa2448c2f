package vmcore

import "github.com/lookbusy1344/acca/internal/isa"

// readAllowed and writeAllowed implement the per-register access table from
// spec §3: flags is readable from any privilege but writable PL0-only;
// elr/esp/eflags/evtable/ectable require PL0 both ways; einfo/eaddr are
// PL0-readable and never writable; vm_console is write-only from any
// privilege.
func readAllowed(reg isa.MachineRegister, priv isa.Privilege) bool {
	switch reg {
	case isa.MRFlags:
		return true
	case isa.MRElr, isa.MREsp, isa.MREflags, isa.MREinfo, isa.MREaddr, isa.MREvtable, isa.MREctable:
		return priv == isa.PL0
	default:
		return false // includes vm_console: read = —
	}
}

func writeAllowed(reg isa.MachineRegister, priv isa.Privilege) bool {
	switch reg {
	case isa.MRFlags, isa.MRElr, isa.MREsp, isa.MREflags, isa.MREvtable, isa.MREctable:
		return priv == isa.PL0
	case isa.MRVMConsole:
		return true
	default:
		return false // einfo/eaddr: write = —
	}
}

// readMachineRegister implements `ldm`'s value lookup, once readAllowed has
// cleared the access check.
func (vm *VM) readMachineRegister(reg isa.MachineRegister) (uint64, bool) {
	switch reg {
	case isa.MRFlags:
		return uint64(vm.CPU.Flags), true
	case isa.MRElr:
		return uint64(vm.Elr), true
	case isa.MREsp:
		return vm.Esp, true
	case isa.MREflags:
		return uint64(vm.Eflags), true
	case isa.MREinfo:
		return vm.Einfo, true
	case isa.MREaddr:
		return uint64(vm.Eaddr), true
	case isa.MREvtable:
		return uint64(vm.Evtable), true
	case isa.MREctable:
		return uint64(vm.Ectable), true
	default:
		return 0, false
	}
}

// writeMachineRegister implements `stm`'s value store, once writeAllowed has
// cleared the access check. It additionally rejects malformed values per
// spec §4.D: out-of-range flag bits, unaligned elr/evtable, and an
// unreadable or invalid candidate ectable.
func (vm *VM) writeMachineRegister(reg isa.MachineRegister, value uint64) bool {
	switch reg {
	case isa.MRFlags:
		if isa.CPUFlags(value)&^isa.ValidFlagsMask != 0 {
			return false
		}
		vm.CPU.Flags = isa.CPUFlags(value)
	case isa.MRElr:
		if !isa.VMAddress(value).AlignedTo4() {
			return false
		}
		vm.Elr = isa.VMAddress(value)
	case isa.MREsp:
		vm.Esp = value
	case isa.MREflags:
		if isa.CPUFlags(value)&^isa.ValidFlagsMask != 0 {
			return false
		}
		vm.Eflags = isa.CPUFlags(value)
	case isa.MREvtable:
		if !isa.VMAddress(value).AlignedTo4() {
			return false
		}
		vm.Evtable = isa.VMAddress(value)
	case isa.MREctable:
		tbl, ok := readExceptionConfigTable(vm.Memory, isa.VMAddress(value))
		if !ok || !validExceptionConfigTable(tbl) {
			return false
		}
		vm.Ectable = isa.VMAddress(value)
	case isa.MRVMConsole:
		_, _ = vm.Output.Write([]byte{byte(value)})
	default:
		return false
	}
	return true
}
