// Package vmcore implements the acca fetch-decode-execute loop: CPU and
// memory state, arithmetic flag computation, the exception-vectoring
// machinery, and the disassembler shared by the emulator and debugger.
package vmcore

import (
	"fmt"
	"io"
	"os"

	"github.com/lookbusy1344/acca/internal/isa"
)

// State is the VM's run/halt/fault status, mirrored from the teacher's
// ExecutionState enum.
type State int

const (
	StateRunning State = iota
	StateHalted
	StateBreakpoint
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateBreakpoint:
		return "breakpoint"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// CPU holds the architectural register state: the 16 general-purpose
// registers, the instruction pointer, and the processor flags.
type CPU struct {
	Regs  isa.RegisterFile
	IP    isa.VMAddress
	Flags isa.CPUFlags
}

// VM is the complete emulator instance: CPU, flat memory, cached machine
// registers, and the bookkeeping the run loop and debugger share.
type VM struct {
	CPU    CPU
	Memory *Memory

	Elr     isa.VMAddress
	Esp     uint64
	Eflags  isa.CPUFlags
	Einfo   uint64
	Eaddr   isa.VMAddress
	Evtable isa.VMAddress
	Ectable isa.VMAddress

	State    State
	Cycles   uint64
	MaxCycles uint64

	Breakpoints map[isa.VMAddress]bool

	// Output is where the vm_console machine register writes its bytes.
	Output io.Writer

	LastFault error
}

// NewVM allocates a VM with sizeBytes of flat memory.
func NewVM(sizeBytes uint64) *VM {
	return &VM{
		Memory:      NewMemory(sizeBytes),
		State:       StateHalted,
		MaxCycles:   10_000_000,
		Breakpoints: make(map[isa.VMAddress]bool),
		Output:      os.Stdout,
	}
}

// LoadImage copies data into memory starting at address 0 and sets the
// initial instruction pointer to entry.
func (vm *VM) LoadImage(data []byte, entry isa.VMAddress) error {
	if err := vm.Memory.WriteBytes(0, data); err != nil {
		return fmt.Errorf("vmcore: loading image: %w", err)
	}
	vm.CPU.IP = entry
	vm.State = StateRunning
	return nil
}

// Privilege is a convenience accessor over the current flags word.
func (vm *VM) Privilege() isa.Privilege { return vm.CPU.Flags.Privilege() }
