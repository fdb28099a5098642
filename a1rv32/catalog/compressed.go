package catalog

import "github.com/basic1rv32/toolchain/a1rv32/argtype"

// addCompressedAlternates registers the C-extension 16-bit alternates for
// a representative subset of the base catalog. Each alternate shares its
// mnemonic+signature key with the full-length candidate it shortens, so
// the size/speed metric (spec §4.4 step 3) naturally prefers it whenever
// the argument-class and immediate-range constraints allow — this is
// "automatic compressed-instruction substitution" (spec glossary).
//
// Field layouts linearize the real scrambled CI/CR/CB/CL/CS immediate
// encodings for clarity, as noted in rv32.go; the selection mechanics are
// exact.
func addCompressedAlternates(c *Catalog) {
	// C.ADDI: ADDI rd, rd, imm (rd==rs1, nonzero, imm fits signed 6 bits).
	c.Add(Candidate{
		Mnemonic: "ADDI", Signature: "XV,XV,V",
		ArgTypes:  []argtype.Type{argtype.RegNZ, argtype.RegNZ, argtype.Imm6S},
		Template:  joinSpace([]string{hexLit(0, 3), fieldTok(2, 5, 1), fieldTok(0, 0, 5), fieldTok(2, 0, 5), hexLit(1, 2)}),
		Predicate: Predicate{Kind: PredEqArgs, A: 0, B: 1},
		Speed:     1, SizeBytes: 2, VariantID: -1, Compressed: true,
	})

	// C.LI: LI rd, imm (rd nonzero, imm fits signed 6 bits).
	c.Add(Candidate{
		Mnemonic: "LI", Signature: "XV,V",
		ArgTypes: []argtype.Type{argtype.RegNZ, argtype.Imm6S},
		Template: joinSpace([]string{hexLit(2, 3), fieldTok(1, 5, 1), fieldTok(0, 0, 5), fieldTok(1, 0, 5), hexLit(1, 2)}),
		Speed:    1, SizeBytes: 2, VariantID: 0, Compressed: true,
	})

	// C.MV: MV rd, rs (both nonzero).
	c.Add(Candidate{
		Mnemonic: "MV", Signature: "XV,XV",
		ArgTypes: []argtype.Type{argtype.RegNZ, argtype.RegNZ},
		Template: joinSpace([]string{hexLit(8, 4), fieldTok(0, 0, 5), fieldTok(1, 0, 5), hexLit(2, 2)}),
		Speed:    1, SizeBytes: 2, VariantID: -1, Compressed: true,
	})

	// C.ADD: ADD rd, rd, rs (rd==rs1, both nonzero).
	c.Add(Candidate{
		Mnemonic: "ADD", Signature: "XV,XV,XV",
		ArgTypes:  []argtype.Type{argtype.RegNZ, argtype.RegNZ, argtype.RegNZ},
		Template:  joinSpace([]string{hexLit(9, 4), fieldTok(0, 0, 5), fieldTok(2, 0, 5), hexLit(2, 2)}),
		Predicate: Predicate{Kind: PredEqArgs, A: 0, B: 1},
		Speed:     1, SizeBytes: 2, VariantID: -1, Compressed: true,
	})

	// C.JR: JR rs (nonzero).
	c.Add(Candidate{
		Mnemonic: "JR", Signature: "XV",
		ArgTypes: []argtype.Type{argtype.RegNZ},
		Template: joinSpace([]string{hexLit(8, 4), fieldTok(0, 0, 5), hexLit(0, 5), hexLit(2, 2)}),
		Speed:    1, SizeBytes: 2, VariantID: -1, Compressed: true,
	})

	// C.J: J label (11-bit range).
	c.Add(Candidate{
		Mnemonic: "J", Signature: "V",
		ArgTypes: []argtype.Type{argtype.Offset11},
		Template: joinSpace([]string{hexLit(5, 3), fieldTok(0, 1, 11), hexLit(1, 2)}),
		Speed:    1, SizeBytes: 2, VariantID: -1, Compressed: true,
	})

	// C.BEQZ / C.BNEZ: compressed-register-class nonzero comparison
	// branches with an 8-bit encoded range.
	compressedBranchZ(c, "BEQZ", 6)
	compressedBranchZ(c, "BNEZ", 7)

	// C.LW / C.SW: compressed-register-class load/store with a small
	// word-aligned offset.
	c.Add(Candidate{
		Mnemonic: "LW", Signature: "XV,V(XV)",
		ArgTypes: []argtype.Type{argtype.CompReg, argtype.Imm7U, argtype.CompReg},
		Template: joinSpace([]string{hexLit(2, 3), fieldTok(2, 0, 3), fieldTok(1, 0, 5), fieldTok(0, 0, 3), hexLit(0, 2)}),
		Speed:    2, SizeBytes: 2, VariantID: -1, Compressed: true,
	})
	c.Add(Candidate{
		Mnemonic: "SW", Signature: "XV,V(XV)",
		ArgTypes: []argtype.Type{argtype.CompReg, argtype.Imm7U, argtype.CompReg},
		Template: joinSpace([]string{hexLit(6, 3), fieldTok(2, 0, 3), fieldTok(1, 0, 5), fieldTok(0, 0, 3), hexLit(0, 2)}),
		Speed:    2, SizeBytes: 2, VariantID: -1, Compressed: true,
	})
}

func compressedBranchZ(c *Catalog, mnemonic string, funct3 int64) {
	c.Add(Candidate{
		Mnemonic: mnemonic, Signature: "XV,V",
		ArgTypes: []argtype.Type{argtype.CompReg, argtype.Offset9},
		Template: joinSpace([]string{hexLit(funct3, 3), fieldTok(0, 0, 3), fieldTok(1, 1, 8), hexLit(1, 2)}),
		Speed:    1, SizeBytes: 2, VariantID: -1, Compressed: true,
	})
}
