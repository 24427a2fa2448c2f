package vmcore

import (
	"bytes"
	"testing"

	"github.com/lookbusy1344/acca/internal/isa"
)

func TestReadWriteMachineRegisters(t *testing.T) {
	vm := NewVM(4096)
	vm.Elr = 0x1234
	vm.Ectable = 0x100 // zeroed memory there decodes as a valid all-zero table

	if v, ok := vm.readMachineRegister(isa.MRElr); !ok || v != 0x1234 {
		t.Errorf("read elr = %#x, %v, want 0x1234, true", v, ok)
	}
	if !vm.writeMachineRegister(isa.MREctable, 0x200) {
		t.Fatal("write ectable failed")
	}
	if vm.Ectable != 0x200 {
		t.Errorf("ectable = %#x, want 0x200", uint64(vm.Ectable))
	}
}

func TestWriteEctableRejectsUnreachableAddress(t *testing.T) {
	vm := NewVM(64)
	if vm.writeMachineRegister(isa.MREctable, vm.Memory.Size()+1000) {
		t.Error("stm ectable should reject an address the table can't be read back from")
	}
}

func TestMachineRegisterFlagsWriteRejectsOutOfRangeBits(t *testing.T) {
	vm := NewVM(64)
	if vm.writeMachineRegister(isa.MRFlags, 0xFF) {
		t.Error("stm flags with bits outside ValidFlagsMask should be rejected, not masked")
	}
	if !vm.writeMachineRegister(isa.MRFlags, uint64(isa.ValidFlagsMask)) {
		t.Error("stm flags with only defined bits should succeed")
	}
	if vm.CPU.Flags != isa.ValidFlagsMask {
		t.Errorf("flags = %#x, want %#x", vm.CPU.Flags, isa.ValidFlagsMask)
	}
}

func TestMachineRegisterElrWriteRejectsMisaligned(t *testing.T) {
	vm := NewVM(64)
	if vm.writeMachineRegister(isa.MRElr, 5) {
		t.Error("stm elr with an unaligned value should be rejected")
	}
	if !vm.writeMachineRegister(isa.MRElr, 8) {
		t.Error("stm elr with an aligned value should succeed")
	}
}

func TestConsoleWritesToOutput(t *testing.T) {
	vm := NewVM(64)
	var buf bytes.Buffer
	vm.Output = &buf
	vm.writeMachineRegister(isa.MRVMConsole, 'A')
	if buf.String() != "A" {
		t.Errorf("console output = %q, want %q", buf.String(), "A")
	}
}

func TestReadWriteAllowedMatchesAccessTable(t *testing.T) {
	cases := []struct {
		reg        isa.MachineRegister
		readPL0    bool
		readPL1    bool
		writePL0   bool
		writePL1   bool
	}{
		{isa.MRFlags, true, true, true, false},
		{isa.MRElr, true, false, true, false},
		{isa.MREsp, true, false, true, false},
		{isa.MREflags, true, false, true, false},
		{isa.MREinfo, true, false, false, false},
		{isa.MREaddr, true, false, false, false},
		{isa.MREvtable, true, false, true, false},
		{isa.MREctable, true, false, true, false},
		{isa.MRVMConsole, false, false, true, true},
	}
	for _, c := range cases {
		if got := readAllowed(c.reg, isa.PL0); got != c.readPL0 {
			t.Errorf("readAllowed(%v, PL0) = %v, want %v", c.reg, got, c.readPL0)
		}
		if got := readAllowed(c.reg, isa.PL1); got != c.readPL1 {
			t.Errorf("readAllowed(%v, PL1) = %v, want %v", c.reg, got, c.readPL1)
		}
		if got := writeAllowed(c.reg, isa.PL0); got != c.writePL0 {
			t.Errorf("writeAllowed(%v, PL0) = %v, want %v", c.reg, got, c.writePL0)
		}
		if got := writeAllowed(c.reg, isa.PL1); got != c.writePL1 {
			t.Errorf("writeAllowed(%v, PL1) = %v, want %v", c.reg, got, c.writePL1)
		}
	}
}
