// Command a1rv32 is the RV32 assembler CLI (spec §6.2): it reads the
// three-address IR text b1c emits (or hand-written assembly in the same
// grammar) and produces an Intel HEX image.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/basic1rv32/toolchain/a1rv32/assembler"
	"github.com/basic1rv32/toolchain/a1rv32/asmparser"
	"github.com/basic1rv32/toolchain/a1rv32/catalog"
	"github.com/basic1rv32/toolchain/internal/target"
)

// Version is overridable at build time: go build -ldflags "-X main.Version=v1.2.3".
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

const (
	exitOK        = 0
	exitBadArgs   = 1
	exitLoadError = 2
	exitParse     = 3
	exitAssemble  = 4
	exitWrite     = 5
)

func run(argv []string) int {
	fs := flag.NewFlagSet("a1rv32", flag.ContinueOnError)
	var (
		autoAlign    = fs.Bool("a", false, "enable auto alignment")
		describe     = fs.Bool("d", false, "print error descriptions")
		ext          = fs.String("ex", "IC", "extensions (I/E/M/C, or ZMMUL)")
		fixAddresses = fs.Bool("f", false, "enable fix-addresses pass")
		libDir       = fs.String("l", "", "library directory")
		mcu          = fs.String("m", "", "MCU name")
		memUsage     = fs.Bool("mu", false, "print memory usage")
		noCompInst   = fs.Bool("nci", false, "forbid automatic compressed-instruction substitution")
		out          = fs.String("o", "", "output file")
		ramSize      = fs.Uint("ram_size", 0, "RAM size override")
		ramStart     = fs.Uint("ram_start", 0, "RAM start override")
		romSize      = fs.Uint("rom_size", 0, "ROM size override")
		romStart     = fs.Uint("rom_start", 0, "ROM start override")
		targetName   = fs.String("t", "RV32", "target name")
		showVersion  = fs.Bool("v", false, "print version")
	)
	if err := fs.Parse(argv); err != nil {
		return exitBadArgs
	}
	if *showVersion {
		fmt.Println("a1rv32", Version)
		return exitOK
	}
	args := fs.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "a1rv32: no input files")
		return exitBadArgs
	}
	_ = targetName

	settings := target.Default()
	settings.Extensions = target.ParseExtensions(strings.ToUpper(*ext))
	settings.AutoCompInst = !*noCompInst
	settings.FixAddresses = *fixAddresses
	settings.AutoAlign = *autoAlign
	if *mcu != "" {
		settings.MCU = *mcu
	}
	if *libDir != "" {
		settings.LibDirs = append(settings.LibDirs, *libDir)
	}
	if *ramSize != 0 {
		settings.Mem.RAMSize = uint32(*ramSize)
	}
	if *ramStart != 0 {
		settings.Mem.RAMStart = uint32(*ramStart)
	}
	if *romSize != 0 {
		settings.Mem.ROMSize = uint32(*romSize)
	}
	if *romStart != 0 {
		settings.Mem.ROMStart = uint32(*romStart)
	}

	prog := &asmparser.Program{}
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "a1rv32: %v\n", err)
			return exitLoadError
		}
		p, err := asmparser.Parse(f)
		f.Close()
		if err != nil {
			printErr(err, *describe)
			return exitParse
		}
		prog.Statements = append(prog.Statements, p.Statements...)
	}

	cat := catalog.BuildCatalog()
	driver := assembler.NewDriver(cat, settings)
	hex, err := driver.Assemble(prog)
	if err != nil {
		printErr(err, *describe)
		return exitAssemble
	}

	outPath := *out
	if outPath == "" {
		first := args[0]
		outPath = strings.TrimSuffix(first, filepath.Ext(first)) + ".ihx"
	}
	if err := os.WriteFile(outPath, []byte(hex), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "a1rv32: %v\n", err)
		return exitWrite
	}
	if *memUsage {
		fmt.Printf("a1rv32: wrote %s (%d bytes of hex text)\n", outPath, len(hex))
	}
	return exitOK
}

func printErr(err error, describe bool) {
	if describe {
		fmt.Fprintf(os.Stderr, "a1rv32: error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "a1rv32: %v\n", err)
}

var _ = strconv.Itoa // reserved for future numeric-flag parsing (ram/rom base selection)
