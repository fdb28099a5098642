// Package argtype implements the assembler's argument type system
// (component C3): value-range and multiple-of constraints, PC-relative
// classification, and register-class membership.
package argtype

import "github.com/basic1rv32/toolchain/a1rv32/eval"

// Class distinguishes a plain numeric/relative argument type from a
// register-class one.
type Class int

const (
	ClassValue Class = iota
	ClassReg
	ClassRegNZ       // x1..x31, no x0
	ClassCompReg     // x8..x15
	ClassRegSP       // x2 only
	ClassRegZ        // x0 only
	ClassRegNZNotSP  // x1,x3..x31
)

// Type is one argument-type record (spec §3, "Argument type").
type Type struct {
	Name         string
	Class        Class
	SizeBits     int
	Min          int64
	Max          int64
	MultipleOf   int64
	Exclude      map[int64]bool
	IsPCRelative bool
}

// Matches reports whether v (already evaluated, already register-resolved
// where the class demands a register index) satisfies t's predicate:
// min ≤ v ≤ max ∧ v mod multipleOf = 0 ∧ v ∉ exclude (spec §4.2).
func (t Type) Matches(v int64) bool {
	if v < t.Min || v > t.Max {
		return false
	}
	if t.MultipleOf > 1 && v%t.MultipleOf != 0 {
		return false
	}
	if t.Exclude != nil && t.Exclude[v] {
		return false
	}
	if t.Class != ClassValue && !registerClassOK(t.Class, v) {
		return false
	}
	return true
}

func registerClassOK(c Class, idx int64) bool {
	switch c {
	case ClassReg:
		return idx >= 0 && idx <= 31
	case ClassRegNZ:
		return idx >= 1 && idx <= 31
	case ClassCompReg:
		return eval.IsCompressedRegister(int(idx))
	case ClassRegSP:
		return idx == 2
	case ClassRegZ:
		return idx == 0
	case ClassRegNZNotSP:
		return idx >= 1 && idx <= 31 && idx != 2
	}
	return false
}

// IsRelOffset reports whether t is one of the PC-relative offset classes
// (13/12/21/9-bit branch/jump displacements, spec glossary "PC-relative
// offset").
func (t Type) IsRelOffset() bool { return t.IsPCRelative }

// Predefined value-argument types used throughout the catalog (C2).
var (
	Reg       = Type{Name: "REG", Class: ClassReg, SizeBits: 5, Min: 0, Max: 31}
	RegNZ     = Type{Name: "REG_NZ", Class: ClassRegNZ, SizeBits: 5, Min: 1, Max: 31}
	CompReg   = Type{Name: "COMP_REG", Class: ClassCompReg, SizeBits: 3, Min: 8, Max: 15}
	RegSP     = Type{Name: "REG_SP", Class: ClassRegSP, SizeBits: 5, Min: 2, Max: 2}
	RegZ      = Type{Name: "REG_Z", Class: ClassRegZ, SizeBits: 5, Min: 0, Max: 0}
	RegNZNSP  = Type{Name: "REG_NZ_NSP", Class: ClassRegNZNotSP, SizeBits: 5, Min: 1, Max: 31}

	Imm5U  = Type{Name: "IMM5U", SizeBits: 5, Min: 0, Max: 31}
	Imm6U  = Type{Name: "IMM6U", SizeBits: 6, Min: 0, Max: 63}
	Imm6S  = Type{Name: "IMM6S", SizeBits: 6, Min: -32, Max: 31, Exclude: map[int64]bool{0: true}}
	Imm7U  = Type{Name: "IMM7U", SizeBits: 5, Min: 0, Max: 124, MultipleOf: 4}
	Imm12S = Type{Name: "IMM12S", SizeBits: 12, Min: -2048, Max: 2047}
	Imm20U = Type{Name: "IMM20U", SizeBits: 20, Min: 0, Max: 0xFFFFF}
	Imm32S = Type{Name: "IMM32S", SizeBits: 32, Min: -(1 << 31), Max: (1 << 31) - 1}

	// Offset9/Offset12/Offset13/Offset21 are the PC-relative displacement
	// classes (spec §4.2): compressed branch (9-bit), store/jalr-style
	// (12-bit), conditional branch (13-bit), and JAL (21-bit), all
	// constrained to even values (encoded with the low bit implicit).
	Offset9  = Type{Name: "OFFSET9", SizeBits: 9, Min: -256, Max: 254, MultipleOf: 2, IsPCRelative: true}
	Offset11 = Type{Name: "OFFSET11", SizeBits: 11, Min: -1024, Max: 1022, MultipleOf: 2, IsPCRelative: true}
	Offset12 = Type{Name: "OFFSET12", SizeBits: 12, Min: -2048, Max: 2046, MultipleOf: 2, IsPCRelative: true}
	Offset13 = Type{Name: "OFFSET13", SizeBits: 13, Min: -4096, Max: 4094, MultipleOf: 2, IsPCRelative: true}
	Offset21 = Type{Name: "OFFSET21", SizeBits: 21, Min: -(1 << 20), Max: (1 << 20) - 2, MultipleOf: 2, IsPCRelative: true}
	// Offset32 is the full-range PC-relative displacement used by the
	// AUIPC+JALR expansion of far CALL/TAIL/J (no encoded range limit
	// narrower than the address space itself).
	Offset32 = Type{Name: "OFFSET32", SizeBits: 32, Min: -(1 << 31), Max: (1 << 31) - 1, IsPCRelative: true}

	CSRAddr  = Type{Name: "CSR", SizeBits: 12, Min: 0, Max: 0xFFF}
	FenceSet = Type{Name: "FENCESET", SizeBits: 4, Min: 0, Max: 0xF}
	ShamtU   = Type{Name: "SHAMT", SizeBits: 5, Min: 0, Max: 31}
)
