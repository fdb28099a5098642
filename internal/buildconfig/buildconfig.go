// Package buildconfig implements the optional TOML project manifest
// ("b1c.toml" / "a1rv32.toml") that records default CLI flag values for a
// project, the same default-then-override-from-file shape the teacher's
// config.Config/config.Load/LoadFrom gives the emulator (§10 of
// SPEC_FULL.md). It layers on top of, and never replaces, the
// spec-mandated <MCU>.cfg/<MCU>.io formats handled by package config.
package buildconfig

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Manifest is the decoded project file.
type Manifest struct {
	MCU struct {
		Name string `toml:"name"`
	} `toml:"mcu"`

	Memory struct {
		RAMStart uint32 `toml:"ram_start"`
		RAMSize  uint32 `toml:"ram_size"`
		ROMStart uint32 `toml:"rom_start"`
		ROMSize  uint32 `toml:"rom_size"`
	} `toml:"memory"`

	Assembler struct {
		Extensions      string `toml:"extensions"`
		AutoAlign       bool   `toml:"auto_align"`
		FixAddresses    bool   `toml:"fix_addresses"`
		NoCompressed    bool   `toml:"no_compressed_subst"`
		PrintMemoryUsage bool  `toml:"print_memory_usage"`
	} `toml:"assembler"`

	Compiler struct {
		HeapSize           uint32 `toml:"heap_size"`
		StackSize          uint32 `toml:"stack_size"`
		NoOptimize         bool   `toml:"no_optimize"`
		NoCompressedSubst  bool   `toml:"no_compressed_subst"`
		EmbedSourceComments bool  `toml:"embed_source_comments"`
	} `toml:"compiler"`

	LibDirs []string `toml:"lib_dirs"`
}

// Default returns a Manifest with the same baseline defaults the CLI flags
// themselves fall back to (spec §6.1/§6.2).
func Default() *Manifest {
	m := &Manifest{}
	m.MCU.Name = "STM8"
	m.Assembler.Extensions = "IC"
	m.Assembler.PrintMemoryUsage = false
	m.Compiler.HeapSize = 256
	m.Compiler.StackSize = 256
	return m
}

// Load reads a manifest file if present; a missing file is not an error —
// Load returns the defaults, mirroring config.LoadFrom in the teacher.
func Load(path string) (*Manifest, error) {
	m := Default()
	if path == "" {
		return m, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m, nil
	}
	if _, err := toml.DecodeFile(path, m); err != nil {
		return nil, fmt.Errorf("failed to parse project manifest %s: %w", path, err)
	}
	return m, nil
}
