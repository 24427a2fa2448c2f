package debugger

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/acca/internal/isa"
	"github.com/lookbusy1344/acca/internal/vmcore"
)

func newTestVM(t *testing.T) *vmcore.VM {
	t.Helper()
	vm := vmcore.NewVM(256)
	// four nop words, encoded from isa.Table's nop pattern.
	nop := isa.EntriesForMnemonic("nop")[0].Encode(nil)
	img := make([]byte, 16)
	for i := 0; i < len(img); i += 4 {
		img[i], img[i+1], img[i+2], img[i+3] = byte(nop), byte(nop>>8), byte(nop>>16), byte(nop>>24)
	}
	if err := vm.LoadImage(img, 0); err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	return vm
}

func TestNewTUIRedirectsConsoleOutput(t *testing.T) {
	vm := newTestVM(t)
	tui := NewTUI(vm)
	if vm.Output == nil {
		t.Fatal("NewTUI should redirect vm.Output into the console pane")
	}
	if tui.RegisterView == nil || tui.DisassemblyView == nil || tui.CommandInput == nil {
		t.Fatal("NewTUI should construct every pane")
	}
}

func TestRunCommandBreakpoint(t *testing.T) {
	vm := newTestVM(t)
	tui := NewTUI(vm)
	tui.runCommand("b 0x8")
	if !vm.Breakpoints[isa.VMAddress(8)] {
		t.Error("expected a breakpoint at 0x8")
	}
}

func TestRunCommandBreakpointBadAddress(t *testing.T) {
	vm := newTestVM(t)
	tui := NewTUI(vm)
	tui.runCommand("b not-a-number")
	if !strings.Contains(tui.status, "bad address") {
		t.Errorf("status = %q, want a bad-address message", tui.status)
	}
}

func TestRunCommandStepAdvancesIP(t *testing.T) {
	vm := newTestVM(t)
	tui := NewTUI(vm)
	before := vm.CPU.IP
	tui.runCommand("step")
	if vm.CPU.IP != before+4 {
		t.Errorf("IP after step = %#x, want %#x", uint64(vm.CPU.IP), uint64(before+4))
	}
}

func TestRunCommandUnknown(t *testing.T) {
	vm := newTestVM(t)
	tui := NewTUI(vm)
	tui.runCommand("frobnicate")
	if !strings.Contains(tui.status, "unknown command") {
		t.Errorf("status = %q, want an unknown-command message", tui.status)
	}
}

func TestRenderRegistersShowsState(t *testing.T) {
	vm := newTestVM(t)
	tui := NewTUI(vm)
	out := tui.renderRegisters()
	if !strings.Contains(out, "r0") {
		t.Error("renderRegisters should list r0")
	}
	if !strings.Contains(out, vm.State.String()) {
		t.Error("renderRegisters should show the VM state")
	}
}
