// Package catalog implements the instruction catalog (component C2): an
// ordered multimap from (mnemonic, argument-shape signature) to candidate
// encodings, with per-candidate argument-type constraints, a predicate tag
// (spec §9 design note — "enumerated predicate tag... data, not classes"),
// and a speed/size metric used to break ties between a full-length and a
// compressed encoding of the same instruction.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/basic1rv32/toolchain/a1rv32/argtype"
)

// PredKind enumerates the small set of extra argument predicates the RV32
// catalog needs beyond plain per-argument range checks (spec §9).
type PredKind int

const (
	// PredNone applies no extra constraint.
	PredNone PredKind = iota
	// PredEqArgs requires the two referenced argument slots to evaluate
	// equal (e.g. a three-operand form collapsing to a two-register
	// compressed form where rd == rs1).
	PredEqArgs
	// PredNeZero requires the referenced argument slot to be nonzero.
	PredNeZero
)

// Predicate is a data-described per-candidate extra constraint.
type Predicate struct {
	Kind PredKind
	A, B int
}

// Eval checks the predicate against the fully evaluated argument values.
func (p Predicate) Eval(vals []int64) bool {
	switch p.Kind {
	case PredNone:
		return true
	case PredEqArgs:
		return p.A < len(vals) && p.B < len(vals) && vals[p.A] == vals[p.B]
	case PredNeZero:
		return p.A < len(vals) && vals[p.A] != 0
	}
	return false
}

// Candidate is one instruction-encoding record (spec §3, "Instruction
// encoding record").
type Candidate struct {
	Mnemonic   string
	Signature  string
	ArgTypes   []argtype.Type // one per IR-level argument slot this candidate consumes
	Template   string         // bit-template for bitenc (spec §4.1), "|" separated for pseudo-expansions
	Speed      int
	SizeBytes  int
	Predicate  Predicate
	VariantID  int // -1 = ordinary; >=0 = fix-up rank within this mnemonic+signature
	NeedsExt   byte // 0 = always available; else required ISA extension letter
	Compressed bool
}

// Metric is the selection tie-break value: speed*256 + size (spec §4.4 step 3).
func (c Candidate) Metric() int { return c.Speed*256 + c.SizeBytes }

// Catalog is the full ordered multimap, keyed by "MNEMONIC SIGNATURE".
type Catalog struct {
	byKey map[string][]Candidate
}

func key(mnemonic, signature string) string {
	return strings.ToUpper(mnemonic) + " " + signature
}

// Add registers a candidate, preserving declaration order within its key
// (spec §4.4: "ties broken by declaration order").
func (c *Catalog) Add(cand Candidate) {
	if c.byKey == nil {
		c.byKey = map[string][]Candidate{}
	}
	k := key(cand.Mnemonic, cand.Signature)
	c.byKey[k] = append(c.byKey[k], cand)
}

// Lookup returns every candidate registered for (mnemonic, signature), in
// declaration order.
func (c *Catalog) Lookup(mnemonic, signature string) []Candidate {
	return c.byKey[key(mnemonic, signature)]
}

// Variants returns every candidate for (mnemonic, signature) whose
// VariantID is >= minVariant, sorted by VariantID ascending — the set the
// driver (C6) climbs through on a PC-relative range failure (spec §4.6).
func (c *Catalog) Variants(mnemonic, signature string, minVariant int) []Candidate {
	all := c.Lookup(mnemonic, signature)
	var out []Candidate
	for _, cand := range all {
		if cand.VariantID >= minVariant {
			out = append(out, cand)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out
}

// ArgKindString computes the signature component for one argument: "XV" for
// a register-like argument, "V" for anything else (spec §4.4).
func ArgKindString(isRegister bool) string {
	if isRegister {
		return "XV"
	}
	return "V"
}

// Signature joins a slice of per-argument kind flags into the catalog's
// signature string, e.g. []bool{true,true,false} -> "XV,XV,V".
func Signature(isRegister []bool) string {
	parts := make([]string, len(isRegister))
	for i, r := range isRegister {
		parts[i] = ArgKindString(r)
	}
	return strings.Join(parts, ",")
}

// ErrInvalidInstruction is returned by the driver when a catalog lookup
// for a mnemonic finds no entry at all under any signature.
type ErrInvalidInstruction struct {
	Mnemonic string
}

func (e *ErrInvalidInstruction) Error() string {
	return fmt.Sprintf("INVALID_INSTRUCTION: no encoding registered for %q", e.Mnemonic)
}

// HasMnemonic reports whether any signature is registered for mnemonic,
// used to distinguish INVALID_INSTRUCTION from a signature/argument-shape
// mismatch under WRONG_ARGUMENT.
func (c *Catalog) HasMnemonic(mnemonic string) bool {
	prefix := strings.ToUpper(mnemonic) + " "
	for k := range c.byKey {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}
