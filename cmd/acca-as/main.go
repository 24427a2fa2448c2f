// Command acca-as assembles acca source into a flat memory image.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/lookbusy1344/acca/internal/asm"
)

func init() {
	log.SetFlags(0)
}

func main() {
	var (
		output      = flag.String("o", "", "output file (default: <input>.bin)")
		dumpSymbols = flag.Bool("dump-symbols", false, "print the resolved label table and exit without writing output")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: acca-as [-o output] [-dump-symbols] <source>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	sourcePath := flag.Arg(0)

	src, err := os.ReadFile(sourcePath) // #nosec G304 -- user-provided source path
	if err != nil {
		log.Fatal(fmt.Errorf("acca-as: %w", err))
	}

	result, err := asm.Assemble(sourcePath, string(src))
	if err != nil {
		log.Fatal(fmt.Errorf("acca-as: %w", err))
	}

	if *dumpSymbols {
		names := make([]string, 0, len(result.Labels))
		for name := range result.Labels {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%-32s %#010x\n", name, result.Labels[name])
		}
		return
	}

	outPath := *output
	if outPath == "" {
		outPath = sourcePath + ".bin"
	}
	if err := os.WriteFile(outPath, result.Image, 0o644); err != nil { // #nosec G306 -- assembler output is not sensitive
		log.Fatal(fmt.Errorf("acca-as: writing %s: %w", outPath, err))
	}
}
