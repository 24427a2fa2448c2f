// Package debugger implements acca's interactive TUI debugger: a register
// and flags view, a disassembly pane, a console-output pane reflecting
// vm_console writes, and a command line for breakpoints and stepping.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/acca/internal/isa"
	"github.com/lookbusy1344/acca/internal/vmcore"
)

// TUI is the debugger's text interface over a running VM.
type TUI struct {
	VM  *vmcore.VM
	App *tview.Application

	RegisterView    *tview.TextView
	DisassemblyView *tview.TextView
	ConsoleView     *tview.TextView
	CommandInput    *tview.InputField

	status string
}

// NewTUI builds the debugger around vm. The VM's Output is redirected into
// the console pane.
func NewTUI(vm *vmcore.VM) *TUI {
	t := &TUI{
		VM:              vm,
		App:             tview.NewApplication(),
		RegisterView:    tview.NewTextView().SetDynamicColors(true),
		DisassemblyView: tview.NewTextView().SetDynamicColors(true),
		ConsoleView:     tview.NewTextView().SetDynamicColors(true).SetMaxLines(2000),
	}
	t.RegisterView.SetBorder(true).SetTitle(" registers ")
	t.DisassemblyView.SetBorder(true).SetTitle(" disassembly ")
	t.ConsoleView.SetBorder(true).SetTitle(" console ")
	vm.Output = tview.ANSIWriter(t.ConsoleView)

	t.CommandInput = tview.NewInputField().SetLabel("(acca) ")
	t.CommandInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			t.runCommand(t.CommandInput.GetText())
			t.CommandInput.SetText("")
		}
	})

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 0, 1, false).
		AddItem(t.ConsoleView, 0, 1, false)
	main := tview.NewFlex().
		AddItem(left, 0, 1, false).
		AddItem(t.DisassemblyView, 0, 1, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(main, 0, 1, false).
		AddItem(t.CommandInput, 1, 0, true)

	t.App.SetRoot(root, true)
	t.refresh()
	return t
}

// Run starts the TUI event loop; it returns when the user quits.
func (t *TUI) Run() error {
	return t.App.Run()
}

func (t *TUI) runCommand(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "s", "step":
		if t.VM.State == vmcore.StateBreakpoint {
			t.VM.State = vmcore.StateRunning
		}
		if err := t.VM.Step(); err != nil {
			t.status = err.Error()
		} else {
			t.status = ""
		}
	case "c", "continue":
		var err error
		if t.VM.State == vmcore.StateBreakpoint {
			// step off the breakpoint so Run does not stop on it again
			t.VM.State = vmcore.StateRunning
			err = t.VM.Step()
		}
		if err == nil {
			err = t.VM.Run()
		}
		if err != nil {
			t.status = err.Error()
		} else {
			t.status = ""
		}
	case "b", "break":
		if len(fields) != 2 {
			t.status = "usage: b <addr>"
			break
		}
		addr, err := strconv.ParseUint(fields[1], 0, 64)
		if err != nil {
			t.status = fmt.Sprintf("bad address %q", fields[1])
			break
		}
		t.VM.Breakpoints[isa.VMAddress(addr)] = true
		t.status = fmt.Sprintf("breakpoint set at %#x", addr)
	case "q", "quit":
		t.App.Stop()
		return
	default:
		t.status = fmt.Sprintf("unknown command %q", fields[0])
	}
	t.refresh()
}

func (t *TUI) refresh() {
	t.RegisterView.SetText(t.renderRegisters())
	t.DisassemblyView.SetText(t.renderDisassembly())
}

func (t *TUI) renderRegisters() string {
	var sb strings.Builder
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&sb, "r%-2d %#018x\n", i, t.VM.CPU.Regs.R[i])
	}
	fmt.Fprintf(&sb, "\nip  %#018x\n", uint64(t.VM.CPU.IP))
	fmt.Fprintf(&sb, "c=%t z=%t o=%t s=%t i=%t pl=%s\n",
		t.VM.CPU.Flags.Carry(), t.VM.CPU.Flags.Zero(), t.VM.CPU.Flags.Overflow(),
		t.VM.CPU.Flags.Sign(), t.VM.CPU.Flags.ExceptionsEnabled(), t.VM.CPU.Flags.Privilege())
	fmt.Fprintf(&sb, "state: %s\n", t.VM.State)
	if t.status != "" {
		fmt.Fprintf(&sb, "\n%s\n", t.status)
	}
	return sb.String()
}

func (t *TUI) renderDisassembly() string {
	var sb strings.Builder
	addr := t.VM.CPU.IP
	for i := 0; i < 20; i++ {
		word, ok := t.VM.Memory.ReadWord(addr)
		if !ok {
			break
		}
		marker := "  "
		if addr == t.VM.CPU.IP {
			marker = "->"
		}
		if t.VM.Breakpoints[addr] {
			marker = "B:"
		}
		fmt.Fprintf(&sb, "%s %#010x: %s\n", marker, uint64(addr), vmcore.Disassemble(word))
		addr += 4
	}
	return sb.String()
}

// Run launches the interactive debugger over vm and blocks until the user
// quits.
func Run(vm *vmcore.VM) error {
	return NewTUI(vm).Run()
}
