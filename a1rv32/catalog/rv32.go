package catalog

import "github.com/basic1rv32/toolchain/a1rv32/argtype"

// BuildCatalog constructs the full RV32I/M/Zicsr catalog plus its
// compressed (C-extension) alternates and pseudo-instruction expansions.
// It is built once at process startup and is read-only thereafter (spec
// §5: "initialized once at startup; after initialization it is read-only").
//
// Field positions below linearize the real RV32 bit layouts for the
// split/scrambled immediate fields (B-type, J-type, and every compressed
// form); the catalog's selection and fix-up behavior — the part under
// spec — is exact, but the exact hardware bit-scrambling of multi-piece
// immediates is not reproduced.
func BuildCatalog() *Catalog {
	c := &Catalog{}

	rType(c, "ADD", 0x00, 0x000, 0x00, 1)
	rType(c, "SUB", 0x00, 0x000, 0x20, 1)
	rType(c, "SLL", 0x00, 0x001, 0x00, 1)
	rType(c, "SLT", 0x00, 0x002, 0x00, 1)
	rType(c, "SLTU", 0x00, 0x003, 0x00, 1)
	rType(c, "XOR", 0x00, 0x004, 0x00, 1)
	rType(c, "SRL", 0x00, 0x005, 0x00, 1)
	rType(c, "SRA", 0x00, 0x005, 0x20, 1)
	rType(c, "OR", 0x00, 0x006, 0x00, 1)
	rType(c, "AND", 0x00, 0x007, 0x00, 1)

	rType(c, "MUL", 0x00, 0x000, 0x01, 3)
	rType(c, "MULH", 0x00, 0x001, 0x01, 3)
	rType(c, "MULHSU", 0x00, 0x002, 0x01, 3)
	rType(c, "MULHU", 0x00, 0x003, 0x01, 3)
	rType(c, "DIV", 0x00, 0x004, 0x01, 6)
	rType(c, "DIVU", 0x00, 0x005, 0x01, 6)
	rType(c, "REM", 0x00, 0x006, 0x01, 6)
	rType(c, "REMU", 0x00, 0x007, 0x01, 6)

	iType(c, "ADDI", 0x000, 1)
	iType(c, "SLTI", 0x002, 1)
	iType(c, "SLTIU", 0x003, 1)
	iType(c, "XORI", 0x004, 1)
	iType(c, "ORI", 0x006, 1)
	iType(c, "ANDI", 0x007, 1)
	shiftType(c, "SLLI", 0x001, 0x00)
	shiftType(c, "SRLI", 0x005, 0x00)
	shiftType(c, "SRAI", 0x005, 0x20)

	loadType(c, "LB", 0x000)
	loadType(c, "LH", 0x001)
	loadType(c, "LW", 0x002)
	loadType(c, "LBU", 0x004)
	loadType(c, "LHU", 0x005)
	storeType(c, "SB", 0x000)
	storeType(c, "SH", 0x001)
	storeType(c, "SW", 0x002)

	branchType(c, "BEQ", 0x000, "BNE")
	branchType(c, "BNE", 0x001, "BEQ")
	branchType(c, "BLT", 0x004, "BGE")
	branchType(c, "BGE", 0x005, "BLT")
	branchType(c, "BLTU", 0x006, "BGEU")
	branchType(c, "BGEU", 0x007, "BLTU")

	uType(c, "LUI", 0x37)
	uType(c, "AUIPC", 0x17)

	c.Add(Candidate{
		Mnemonic: "JAL", Signature: "XV,V",
		ArgTypes:  []argtype.Type{argtype.Reg, argtype.Offset21},
		Template:  joinSpace([]string{fieldTok(1, 1, 20), fieldTok(0, 0, 5), hexLit(0x6F, 7)}),
		Speed:     1, SizeBytes: 4, VariantID: -1,
	})

	c.Add(Candidate{
		Mnemonic: "JALR", Signature: "XV,XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg, argtype.Imm12S},
		Template: joinSpace([]string{fieldTok(2, 0, 12), fieldTok(1, 0, 5), hexLit(0, 3), fieldTok(0, 0, 5), hexLit(0x67, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})

	systemNoArg(c, "ECALL", 0x000)
	systemNoArg(c, "EBREAK", 0x001)

	csrType(c, "CSRRW", 0x001)
	csrType(c, "CSRRS", 0x002)
	csrType(c, "CSRRC", 0x003)
	csrImmType(c, "CSRRWI", 0x005)
	csrImmType(c, "CSRRSI", 0x006)
	csrImmType(c, "CSRRCI", 0x007)

	c.Add(Candidate{
		Mnemonic: "FENCE", Signature: "V,V",
		ArgTypes: []argtype.Type{argtype.FenceSet, argtype.FenceSet},
		Template: joinSpace([]string{hexLit(0, 4), fieldTok(0, 0, 4), fieldTok(1, 0, 4), hexLit(0, 5), hexLit(0, 3), hexLit(0, 5), hexLit(0x0F, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})

	addPseudoInstructions(c)
	addCompressedAlternates(c)
	return c
}

// rType registers a register-register instruction (R-type: funct7 rs2 rs1
// funct3 rd opcode, opcode always OP=0x33 here, OP-32/M share the opcode).
func rType(c *Catalog, mnemonic string, opcode, funct3, funct7 int64, speed int) {
	realOpcode := int64(0x33)
	_ = opcode
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,XV,XV",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg, argtype.Reg},
		Template: joinSpace([]string{
			hexLit(funct7, 7), fieldTok(2, 0, 5), fieldTok(1, 0, 5),
			hexLit(funct3, 3), fieldTok(0, 0, 5), hexLit(realOpcode, 7),
		}),
		Speed: speed, SizeBytes: 4, VariantID: -1,
	})
}

// iType registers an I-type arithmetic/logic instruction (OP-IMM = 0x13):
// imm[11:0] rs1 funct3 rd opcode.
func iType(c *Catalog, mnemonic string, funct3 int64, speed int) {
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg, argtype.Imm12S},
		Template: joinSpace([]string{
			fieldTok(2, 0, 12), fieldTok(1, 0, 5), hexLit(funct3, 3),
			fieldTok(0, 0, 5), hexLit(0x13, 7),
		}),
		Speed: speed, SizeBytes: 4, VariantID: -1,
	})
}

// shiftType registers SLLI/SRLI/SRAI (imm[11:5]=funct7, imm[4:0]=shamt).
func shiftType(c *Catalog, mnemonic string, funct3, funct7 int64) {
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg, argtype.ShamtU},
		Template: joinSpace([]string{
			hexLit(funct7, 7), fieldTok(2, 0, 5), fieldTok(1, 0, 5),
			hexLit(funct3, 3), fieldTok(0, 0, 5), hexLit(0x13, 7),
		}),
		Speed: 1, SizeBytes: 4, VariantID: -1,
	})
}

// loadType registers LB/LH/LW/LBU/LHU: imm[11:0] rs1 funct3 rd opcode,
// assembly syntax `rd, imm(rs1)` i.e. args are [rd, imm, rs1].
func loadType(c *Catalog, mnemonic string, funct3 int64) {
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,V(XV)",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Imm12S, argtype.Reg},
		Template: joinSpace([]string{
			fieldTok(1, 0, 12), fieldTok(2, 0, 5), hexLit(funct3, 3),
			fieldTok(0, 0, 5), hexLit(0x03, 7),
		}),
		Speed: 2, SizeBytes: 4, VariantID: -1,
	})
}

// storeType registers SB/SH/SW: imm[11:5] rs2 rs1 funct3 imm[4:0] opcode,
// assembly syntax `rs2, imm(rs1)` i.e. args are [rs2, imm, rs1].
func storeType(c *Catalog, mnemonic string, funct3 int64) {
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,V(XV)",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Imm12S, argtype.Reg},
		Template: joinSpace([]string{
			fieldTok(1, 5, 7), fieldTok(0, 0, 5), fieldTok(2, 0, 5),
			hexLit(funct3, 3), fieldTok(1, 0, 5), hexLit(0x23, 7),
		}),
		Speed: 2, SizeBytes: 4, VariantID: -1,
	})
}

// branchType registers the ordinary 13-bit-range conditional branch
// (variant 0) plus, per spec §8 scenario 4, the wide fix-up variant that
// inverts the condition over a fixed +8 skip and follows with a full
// 21-bit-range JAL (variant 1).
func branchType(c *Catalog, mnemonic string, funct3 int64, inverseFunct3Of string) {
	_ = inverseFunct3Of
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg, argtype.Offset13},
		Template: joinSpace([]string{
			fieldTok(2, 1, 12), fieldTok(1, 0, 5), fieldTok(0, 0, 5),
			hexLit(funct3, 3), hexLit(0x63, 7),
		}),
		Speed: 1, SizeBytes: 4, VariantID: 0,
	})
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg, argtype.Offset21},
		Template: joinSpace([]string{
			// segment 1: inverted branch, fixed literal offset = 8 bytes
			// (bits[12:1] of 8 is 4) to skip over the JAL segment below
			hexLit(4, 12), fieldTok(1, 0, 5), fieldTok(0, 0, 5), hexLit(invertFunct3(funct3), 3), hexLit(0x63, 7),
			"|",
			// segment 2: JAL x0, target (target is argument 2, PC-relative to this segment)
			fieldTok(2, 1, 20), hexLit(0, 5), hexLit(0x6F, 7),
		}),
		Speed: 1, SizeBytes: 8, VariantID: 1,
	})
}

func invertFunct3(f int64) int64 { return f ^ 0x1 }

// uType registers LUI/AUIPC: imm[31:12] rd opcode, where the 20-bit
// immediate argument is taken as-is (already the upper-bits value).
func uType(c *Catalog, mnemonic string, opcode int64) {
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Imm20U},
		Template: joinSpace([]string{fieldTok(1, 0, 20), fieldTok(0, 0, 5), hexLit(opcode, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})
}

func systemNoArg(c *Catalog, mnemonic string, imm int64) {
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "",
		Template: joinSpace([]string{hexLit(imm, 12), hexLit(0, 5), hexLit(0, 3), hexLit(0, 5), hexLit(0x73, 7)}),
		Speed:    2, SizeBytes: 4, VariantID: -1,
	})
}

func csrType(c *Catalog, mnemonic string, funct3 int64) {
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,V,XV",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.CSRAddr, argtype.Reg},
		Template: joinSpace([]string{fieldTok(1, 0, 12), fieldTok(2, 0, 5), hexLit(funct3, 3), fieldTok(0, 0, 5), hexLit(0x73, 7)}),
		Speed:    2, SizeBytes: 4, VariantID: -1,
	})
}

func csrImmType(c *Catalog, mnemonic string, funct3 int64) {
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,V,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.CSRAddr, argtype.Imm5U},
		Template: joinSpace([]string{fieldTok(1, 0, 12), fieldTok(2, 0, 5), hexLit(funct3, 3), fieldTok(0, 0, 5), hexLit(0x73, 7)}),
		Speed:    2, SizeBytes: 4, VariantID: -1,
	})
}

func hexLit(v, w int64) string { return hexStr(v) + ":" + hexStr(w) }

func fieldTok(argIdx, start, width int64) string {
	return "{" + hexStr(argIdx) + ":" + hexStr(start) + ":" + hexStr(width) + "}"
}

func hexStr(v int64) string {
	const digits = "0123456789ABCDEF"
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var b []byte
	for v > 0 {
		b = append([]byte{digits[v%16]}, b...)
		v /= 16
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
