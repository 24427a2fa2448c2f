// Command acca-emu loads and runs an acca flat memory image.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/lookbusy1344/acca/internal/config"
	"github.com/lookbusy1344/acca/internal/debugger"
	"github.com/lookbusy1344/acca/internal/isa"
	"github.com/lookbusy1344/acca/internal/vmcore"
)

func init() {
	log.SetFlags(0)
}

func main() {
	var (
		configPath       = flag.String("config", "", "path to a TOML configuration file (default: platform config dir)")
		entryOverride    = flag.String("entry", "", "entry point address, overriding configuration (hex or decimal)")
		trace            = flag.Bool("trace", false, "print a per-instruction execution trace to stderr (diagnostic only)")
		printInstrsOnly  = flag.Bool("print-instructions", false, "disassemble the image and exit without executing it")
		tui              = flag.Bool("tui", false, "launch the interactive debugger instead of running to completion")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: acca-emu [flags] <image>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(fmt.Errorf("acca-emu: %w", err))
	}

	image, err := os.ReadFile(imagePath) // #nosec G304 -- user-provided image path
	if err != nil {
		log.Fatal(fmt.Errorf("acca-emu: %w", err))
	}

	if *printInstrsOnly {
		printInstructions(image)
		return
	}

	entryText := cfg.Execution.EntryPoint
	if *entryOverride != "" {
		entryText = *entryOverride
	}
	entry, err := strconv.ParseUint(entryText, 0, 64)
	if err != nil {
		log.Fatal(fmt.Errorf("acca-emu: invalid entry point %q: %w", entryText, err))
	}

	vm := vmcore.NewVM(cfg.Memory.SizeBytes)
	vm.MaxCycles = cfg.Execution.MaxCycles
	if err := vm.LoadImage(image, isa.VMAddress(entry)); err != nil {
		log.Fatal(fmt.Errorf("acca-emu: %w", err))
	}

	if *tui {
		if err := debugger.Run(vm); err != nil {
			log.Fatal(fmt.Errorf("acca-emu: %w", err))
		}
		return
	}

	if *trace || cfg.Execution.EnableTrace {
		runWithTrace(vm)
	} else if err := vm.Run(); err != nil {
		log.Fatal(fmt.Errorf("acca-emu: %w", err))
	}

	if vm.State == vmcore.StateFatal {
		os.Exit(1)
	}
}

func runWithTrace(vm *vmcore.VM) {
	for vm.State == vmcore.StateRunning {
		ip := vm.CPU.IP
		word, ok := vm.Memory.ReadWord(ip)
		if ok {
			fmt.Fprintf(os.Stderr, "%#010x: %s\n", uint64(ip), vmcore.Disassemble(word))
		}
		if err := vm.Step(); err != nil {
			log.Fatal(fmt.Errorf("acca-emu: %w", err))
		}
	}
}

func printInstructions(image []byte) {
	for addr := 0; addr+4 <= len(image); addr += 4 {
		word := uint32(image[addr]) | uint32(image[addr+1])<<8 | uint32(image[addr+2])<<16 | uint32(image[addr+3])<<24
		fmt.Printf("%#010x: %s\n", addr, vmcore.Disassemble(word))
	}
}
