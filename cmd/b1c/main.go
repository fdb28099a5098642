// Command b1c is the BASIC compiler CLI (spec §6.1): it compiles one or
// more BASIC source files to three-address IR text, then — unless told
// not to — hands that IR straight to the a1rv32 assembler to produce an
// Intel HEX image.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/basic1rv32/toolchain/a1rv32/assembler"
	"github.com/basic1rv32/toolchain/a1rv32/asmparser"
	"github.com/basic1rv32/toolchain/a1rv32/catalog"
	"github.com/basic1rv32/toolchain/b1c/compiler"
	"github.com/basic1rv32/toolchain/internal/target"
)

// Version is overridable at build time: go build -ldflags "-X main.Version=v1.2.3".
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

const (
	exitOK          = 0
	exitBadArgs     = 1
	exitMissingDep  = 2
	exitFileError   = 3
	exitLoadError   = 4
	exitCompileFail = 5
	exitWriteError  = 6
	exitAssembleErr = 7
)

func run(argv []string) int {
	fs := flag.NewFlagSet("b1c", flag.ContinueOnError)
	var (
		describe     = fs.Bool("d", false, "print error descriptions")
		heapSize     = fs.Uint("hs", 256, "heap size in bytes")
		libDir       = fs.String("l", "", "library directory")
		listDevices  = fs.Bool("ld", false, "list known devices and exit")
		listCommands = fs.String("lc", "", "list a device's commands and exit")
		mcu          = fs.String("m", "", "MCU name")
		memModel     = fs.String("ml", "", "memory model (small/large); also accepts -ms")
		memModelS    = fs.String("ms", "", "memory model (small/large)")
		memUsage     = fs.Bool("mu", false, "print memory usage")
		noAssemble   = fs.Bool("na", false, "compile only, do not invoke the assembler")
		compileOnly  = fs.Bool("nc", false, "compile only (alias for -na)")
		noCompInst   = fs.Bool("nci", false, "forbid automatic compressed-instruction substitution")
		noOptimize   = fs.Bool("no", false, "disable IR optimization")
		out          = fs.String("o", "", "output file")
		ramSize      = fs.Uint("ram_size", 0, "RAM size override")
		ramStart     = fs.Uint("ram_start", 0, "RAM start override")
		romSize      = fs.Uint("rom_size", 0, "ROM size override")
		romStart     = fs.Uint("rom_start", 0, "ROM start override")
		embedSource  = fs.Bool("s", false, "embed source text as comments in IR output")
		stackSize    = fs.Uint("ss", 256, "stack size in bytes")
		targetName   = fs.String("t", "STM8", "target name")
		showVersion  = fs.Bool("v", false, "print version")
	)
	if err := fs.Parse(argv); err != nil {
		return exitBadArgs
	}
	if *showVersion {
		fmt.Println("b1c", Version)
		return exitOK
	}

	settings := target.Default()
	settings.MCU = *targetName
	if *mcu != "" {
		settings.MCU = *mcu
	}
	settings.AutoCompInst = !*noCompInst
	settings.StackSize = uint32(*stackSize)
	settings.HeapSize = uint32(*heapSize)
	if model := firstNonEmpty(*memModel, *memModelS); model != "" {
		settings.MemoryModel = model
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

	if *listDevices {
		for _, d := range settings.Devices {
			fmt.Println(d.Name)
		}
		return exitOK
	}
	if *listCommands != "" {
		for _, d := range settings.Devices {
			if !strings.EqualFold(d.Name, *listCommands) {
				continue
			}
			for _, a := range d.Aliases {
				fmt.Println(a)
			}
			return exitOK
		}
		fmt.Fprintf(os.Stderr, "b1c: unknown device %q\n", *listCommands)
		return exitMissingDep
	}

	args := fs.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "b1c: no input files")
		return exitBadArgs
	}

	var files []compiler.File
	sourceByFile := map[string][]string{}
	for _, path := range args {
		lines, err := readLines(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "b1c: %v\n", err)
			return exitLoadError
		}
		files = append(files, compiler.File{Name: path, Source: lines})
		sourceByFile[namespaceKey(path)] = lines
	}

	opts := compiler.Options{
		NoOptimize:  *noOptimize,
		EmbedSource: *embedSource,
	}
	result, err := compiler.Compile(files, opts)
	if err != nil {
		printErr(err, *describe)
		return exitCompileFail
	}

	firstLines := sourceByFile[namespaceKey(args[0])]
	irText := compiler.Emit(result, opts, func(lineCnt int32) string {
		idx := int(lineCnt) - 1
		if idx < 0 || idx >= len(firstLines) {
			return ""
		}
		return firstLines[idx]
	})

	outPath := *out
	runAssemble := !*noAssemble && !*compileOnly
	if outPath == "" {
		base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
		if runAssemble {
			outPath = base + ".ihx"
		} else {
			outPath = base + ".ir"
		}
	}

	if !runAssemble {
		if err := os.WriteFile(outPath, []byte(irText), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "b1c: %v\n", err)
			return exitWriteError
		}
		if *memUsage {
			fmt.Printf("b1c: wrote %s (%d IR commands)\n", outPath, len(result.Commands))
		}
		return exitOK
	}

	prog, err := asmparser.Parse(strings.NewReader(irText))
	if err != nil {
		printErr(err, *describe)
		return exitAssembleErr
	}
	cat := catalog.BuildCatalog()
	driver := assembler.NewDriver(cat, settings)
	hex, err := driver.Assemble(prog)
	if err != nil {
		printErr(err, *describe)
		return exitAssembleErr
	}
	if err := os.WriteFile(outPath, []byte(hex), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "b1c: %v\n", err)
		return exitWriteError
	}
	if *memUsage {
		fmt.Printf("b1c: wrote %s (%d bytes of hex text)\n", outPath, len(hex))
	}
	return exitOK
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func namespaceKey(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func printErr(err error, describe bool) {
	if describe {
		fmt.Fprintf(os.Stderr, "b1c: error: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "b1c: %v\n", err)
}
