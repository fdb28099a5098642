package catalog

import "github.com/basic1rv32/toolchain/a1rv32/argtype"

// addPseudoInstructions registers the pseudo-mnemonics the assembler
// expands automatically (spec glossary "Pseudo-instruction"; spec §8
// scenario 5: "LI A0, 0x12345678 -> LUI A0,0x12345; ADDI A0,A0,0x678").
func addPseudoInstructions(c *Catalog) {
	// LI rd, imm: fits in 12 bits -> ADDI rd, x0, imm (variant 0);
	// otherwise -> LUI rd, imm.H20 | ADDI rd, rd, imm.L12 (variant 1).
	c.Add(Candidate{
		Mnemonic: "LI", Signature: "XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Imm12S},
		Template: joinSpace([]string{fieldTok(1, 0, 12), hexLit(0, 5), hexLit(0, 3), fieldTok(0, 0, 5), hexLit(0x13, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: 0,
	})
	c.Add(Candidate{
		Mnemonic: "LI", Signature: "XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Imm32S},
		Template: joinSpace([]string{
			fieldTokPostfix(1, "H20", 0, 20), fieldTok(0, 0, 5), hexLit(0x37, 7), "|",
			fieldTokPostfix(1, "L12", 0, 12), fieldTok(0, 0, 5), hexLit(0, 3), fieldTok(0, 0, 5), hexLit(0x13, 7),
		}),
		Speed: 1, SizeBytes: 8, VariantID: 1,
	})

	// LA rd, label: same two-instruction shape as wide LI, over the
	// label's absolute address.
	c.Add(Candidate{
		Mnemonic: "LA", Signature: "XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Imm32S},
		Template: joinSpace([]string{
			fieldTokPostfix(1, "H20", 0, 20), fieldTok(0, 0, 5), hexLit(0x37, 7), "|",
			fieldTokPostfix(1, "L12", 0, 12), fieldTok(0, 0, 5), hexLit(0, 3), fieldTok(0, 0, 5), hexLit(0x13, 7),
		}),
		Speed: 1, SizeBytes: 8, VariantID: -1,
	})

	// CALL label: JAL ra, label (variant 0, ±1 MiB range); falls back to
	// the position-independent AUIPC ra,label.H20 / JALR ra,ra,label.L12
	// pair (variant 1, full 32-bit range) exactly as the real RV32 "call"
	// pseudo-instruction does.
	c.Add(Candidate{
		Mnemonic: "CALL", Signature: "V",
		ArgTypes: []argtype.Type{argtype.Offset21},
		Template: joinSpace([]string{fieldTok(0, 1, 20), hexLit(1, 5), hexLit(0x6F, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: 0,
	})
	c.Add(Candidate{
		Mnemonic: "CALL", Signature: "V",
		ArgTypes: []argtype.Type{argtype.Offset32},
		Template: joinSpace([]string{
			fieldTokPostfix(0, "H20", 0, 20), hexLit(1, 5), hexLit(0x17, 7), "|",
			fieldTokPostfix(0, "L12", 0, 12), hexLit(1, 5), hexLit(0, 3), hexLit(1, 5), hexLit(0x67, 7),
		}),
		Speed: 1, SizeBytes: 8, VariantID: 1,
	})

	// TAIL label: AUIPC t1,label.H20 / JALR x0,t1,label.L12 — the far CALL
	// shape with t1 as scratch register and rd=x0 (no return address
	// saved); tail calls always use the position-independent form.
	c.Add(Candidate{
		Mnemonic: "TAIL", Signature: "V",
		ArgTypes: []argtype.Type{argtype.Offset32},
		Template: joinSpace([]string{
			fieldTokPostfix(0, "H20", 0, 20), hexLit(6, 5), hexLit(0x17, 7), "|",
			fieldTokPostfix(0, "L12", 0, 12), hexLit(6, 5), hexLit(0, 3), hexLit(0, 5), hexLit(0x67, 7),
		}),
		Speed: 1, SizeBytes: 8, VariantID: -1,
	})

	// J label / JR rs / RET: unconditional jumps with fixed register operands.
	c.Add(Candidate{
		Mnemonic: "J", Signature: "V",
		ArgTypes: []argtype.Type{argtype.Offset21},
		Template: joinSpace([]string{fieldTok(0, 1, 20), hexLit(0, 5), hexLit(0x6F, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: 0,
	})
	c.Add(Candidate{
		Mnemonic: "JR", Signature: "XV",
		ArgTypes: []argtype.Type{argtype.Reg},
		Template: joinSpace([]string{hexLit(0, 12), fieldTok(0, 0, 5), hexLit(0, 3), hexLit(0, 5), hexLit(0x67, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})
	c.Add(Candidate{
		Mnemonic: "RET", Signature: "",
		Template: joinSpace([]string{hexLit(0, 12), hexLit(1, 5), hexLit(0, 3), hexLit(0, 5), hexLit(0x67, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})
	c.Add(Candidate{
		Mnemonic: "NOP", Signature: "",
		Template: joinSpace([]string{hexLit(0, 12), hexLit(0, 5), hexLit(0, 3), hexLit(0, 5), hexLit(0x13, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})

	// Register-register aliases.
	aliasRR(c, "MV", "ADDI", true, false)  // ADDI rd, rs, 0
	aliasRRImm(c, "NOT", "XORI", -1)       // XORI rd, rs, -1
	aliasNegSub(c)                         // SUB rd, x0, rs
	aliasRRImm(c, "SEQZ", "SLTIU", 1)      // SLTIU rd, rs, 1
	aliasRegZReg(c, "SNEZ", "SLTU", false) // SLTU rd, x0, rs
	aliasRegRegZ(c, "SLTZ", "SLT", true)   // SLT rd, rs, x0
	aliasRegZReg(c, "SGTZ", "SLT", true)   // SLT rd, x0, rs

	// Branch-with-zero aliases, narrow (variant 0) only; the wide
	// fix-up variant is left to the two-register form the optimizer's
	// output already resolves to when the zero comparison is explicit.
	branchZAlias(c, "BEQZ", "BEQ", true)
	branchZAlias(c, "BNEZ", "BNE", true)
	branchZAlias(c, "BGEZ", "BGE", true)
	branchZAlias(c, "BLTZ", "BLT", true)
	branchZAlias(c, "BLEZ", "BGE", false)
	branchZAlias(c, "BGTZ", "BLT", false)
}

func fieldTokPostfix(argIdx int64, postfix string, start, width int64) string {
	return "{" + hexStr(argIdx) + "." + postfix + ":" + hexStr(start) + ":" + hexStr(width) + "}"
}

// aliasRR registers `name rd, rs` as `base rd, rs, 0` (ADDI-shaped).
func aliasRR(c *Catalog, name, _ string, _ bool, _ bool) {
	c.Add(Candidate{
		Mnemonic: name, Signature: "XV,XV",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg},
		Template: joinSpace([]string{hexLit(0, 12), fieldTok(1, 0, 5), hexLit(0, 3), fieldTok(0, 0, 5), hexLit(0x13, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})
}

// aliasRRImm registers `name rd, rs` as `base rd, rs, imm` (I-type shaped,
// funct3 implied by base being XORI (0x4) or SLTIU (0x3)).
func aliasRRImm(c *Catalog, name, base string, imm int64) {
	funct3 := map[string]int64{"XORI": 0x4, "SLTIU": 0x3}[base]
	c.Add(Candidate{
		Mnemonic: name, Signature: "XV,XV",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg},
		Template: joinSpace([]string{hexLit(imm&0xFFF, 12), fieldTok(1, 0, 5), hexLit(funct3, 3), fieldTok(0, 0, 5), hexLit(0x13, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})
}

// aliasNegSub registers NEG rd, rs as SUB rd, x0, rs.
func aliasNegSub(c *Catalog) {
	c.Add(Candidate{
		Mnemonic: "NEG", Signature: "XV,XV",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg},
		Template: joinSpace([]string{hexLit(0x20, 7), fieldTok(1, 0, 5), hexLit(0, 5), hexLit(0, 3), fieldTok(0, 0, 5), hexLit(0x33, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})
}

// aliasRegZReg registers `name rd, rs` as `base rd, x0, rs` (R-type,
// funct3 per base SLTU(0x3)/SLT(0x2)).
func aliasRegZReg(c *Catalog, name, base string, _ bool) {
	funct3 := map[string]int64{"SLTU": 0x3, "SLT": 0x2}[base]
	c.Add(Candidate{
		Mnemonic: name, Signature: "XV,XV",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg},
		Template: joinSpace([]string{hexLit(0, 7), fieldTok(1, 0, 5), hexLit(0, 5), hexLit(funct3, 3), fieldTok(0, 0, 5), hexLit(0x33, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})
}

// aliasRegRegZ registers `name rd, rs` as `base rd, rs, x0` (R-type).
func aliasRegRegZ(c *Catalog, name, base string, _ bool) {
	funct3 := map[string]int64{"SLT": 0x2}[base]
	c.Add(Candidate{
		Mnemonic: name, Signature: "XV,XV",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Reg},
		Template: joinSpace([]string{hexLit(0, 7), hexLit(0, 5), fieldTok(1, 0, 5), hexLit(funct3, 3), fieldTok(0, 0, 5), hexLit(0x33, 7)}),
		Speed:    1, SizeBytes: 4, VariantID: -1,
	})
}

// branchZAlias registers `name rs, label` as `base rs, x0, label` (rsFirst
// true) or `base x0, rs, label` (rsFirst false), narrow 13-bit range.
func branchZAlias(c *Catalog, name, base string, rsFirst bool) {
	funct3 := map[string]int64{"BEQ": 0x0, "BNE": 0x1, "BLT": 0x4, "BGE": 0x5}[base]
	var fields []string
	if rsFirst {
		fields = []string{fieldTok(1, 1, 12), hexLit(0, 5), fieldTok(0, 0, 5), hexLit(funct3, 3), hexLit(0x63, 7)}
	} else {
		fields = []string{fieldTok(1, 1, 12), fieldTok(0, 0, 5), hexLit(0, 5), hexLit(funct3, 3), hexLit(0x63, 7)}
	}
	c.Add(Candidate{
		Mnemonic: name, Signature: "XV,V",
		ArgTypes: []argtype.Type{argtype.Reg, argtype.Offset13},
		Template: joinSpace(fields),
		Speed:    1, SizeBytes: 4, VariantID: 0,
	})
}
