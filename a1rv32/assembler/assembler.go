// Package assembler implements the assembler driver (component C6): the
// select → layout → resolve → emit pipeline described in spec §4.6, with
// the iterative PC-relative fix-up loop that widens a statement's
// candidate encoding until it fits or no wider variant remains.
package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/basic1rv32/toolchain/a1rv32/argtype"
	"github.com/basic1rv32/toolchain/a1rv32/asmparser"
	"github.com/basic1rv32/toolchain/a1rv32/bitenc"
	"github.com/basic1rv32/toolchain/a1rv32/catalog"
	"github.com/basic1rv32/toolchain/a1rv32/eval"
	"github.com/basic1rv32/toolchain/a1rv32/ihex"
	"github.com/basic1rv32/toolchain/a1rv32/section"
	"github.com/basic1rv32/toolchain/internal/target"
)

// dataDirectives are the scalar-literal data pseudo-ops: DB/DW/DD place
// one byte/halfword/word per argument into the current section.
var dataDirectives = map[string]int{"DB": 1, "DW": 2, "DD": 4}

// sectionDirectives map a pseudo-op name to its section.Kind (spec §4.5).
var sectionDirectives = map[string]section.Kind{
	".DATA": section.KindData, ".HEAP": section.KindHeap, ".STACK": section.KindStack,
	".CONST": section.KindConst, ".CODE": section.KindCode, ".INIT": section.KindInit,
}

// inst is one assembled statement: its chosen candidate, flattened
// argument expressions, and its section placement.
type inst struct {
	stmt      *asmparser.Statement
	candidate catalog.Candidate
	slots     []asmparser.Slot
	sigKey    string
	item      *section.Item
	sec       *section.Section
	labels    []string // labels attached immediately before this statement
}

// Driver runs the full pipeline over a parsed program.
type Driver struct {
	Catalog  *catalog.Catalog
	Settings target.Settings

	insts    []*inst
	dataRows []*dataRow
	builder  *section.Builder
	labelPC  map[string]uint32
}

type dataRow struct {
	width int
	args  []string
	item  *section.Item
	sec   *section.Section
}

// NewDriver creates a Driver over the given instruction catalog and target
// settings (extensions, memory map).
func NewDriver(cat *catalog.Catalog, settings target.Settings) *Driver {
	return &Driver{Catalog: cat, Settings: settings, labelPC: map[string]uint32{}}
}

// Assemble runs the full select → layout → resolve → emit pipeline over
// prog and returns the Intel HEX image text.
func (d *Driver) Assemble(prog *asmparser.Program) (string, error) {
	d.builder = section.NewBuilder(d.Settings.Extensions.Has(target.ExtC))
	cur, err := d.builder.Begin(section.KindCode, "")
	if err != nil {
		return "", err
	}

	var pendingLabels []string
	for _, st := range prog.Statements {
		if st.IsLabel {
			pendingLabels = append(pendingLabels, st.Label)
			continue
		}
		if kind, ok := sectionDirectives[st.Mnemonic]; ok {
			cur, err = d.builder.Begin(kind, "")
			if err != nil {
				return "", err
			}
			continue
		}
		if width, ok := dataDirectives[st.Mnemonic]; ok {
			args := make([]string, len(st.Args))
			for i, a := range st.Args {
				if len(a) > 0 {
					args[i] = a[0].Value
				}
			}
			row := &dataRow{width: width, args: args, sec: cur}
			item := &section.Item{Size: width * len(args), Tag: row}
			row.item = item
			cur.Items = append(cur.Items, item)
			d.dataRows = append(d.dataRows, row)
			if len(pendingLabels) > 0 {
				d.insts = append(d.insts, &inst{labels: pendingLabels, item: item, sec: cur})
				pendingLabels = nil
			}
			continue
		}

		slots := asmparser.Flatten(st.Args)
		sig := asmparser.Signature(st.Args, eval.IsRegisterName)
		cands := d.Catalog.Lookup(st.Mnemonic, sig)
		if len(cands) == 0 {
			if !d.Catalog.HasMnemonic(st.Mnemonic) {
				return "", fmt.Errorf("%w (line %d: %s)", &catalog.ErrInvalidInstruction{Mnemonic: st.Mnemonic}, st.LineNum, st.Raw)
			}
			return "", fmt.Errorf("WRONG_ARGUMENT: %q does not accept shape %q (line %d)", st.Mnemonic, sig, st.LineNum)
		}
		chosen, err := d.selectProvisional(cands, slots)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", st.LineNum, err)
		}
		item := &section.Item{Size: chosen.SizeBytes}
		cur.Items = append(cur.Items, item)
		in := &inst{stmt: st, candidate: chosen, slots: slots, sigKey: sig, item: item, sec: cur, labels: pendingLabels}
		pendingLabels = nil
		d.insts = append(d.insts, in)
	}

	if err := d.layoutAndResolve(); err != nil {
		return "", err
	}
	return d.emit()
}

// selectProvisional implements spec §4.4 steps 2-3 for the initial guess:
// register/CSR/fence/immediate arguments are checked now; label-dependent
// (PC-relative or absolute-symbolic) arguments are assumed valid, deferred
// to the resolve phase. Of the candidates that pass, the one with the
// lowest Metric (speed*256+size) is chosen, ties going to the earliest
// declared; VariantID plays no part in this first choice.
func (d *Driver) selectProvisional(cands []catalog.Candidate, slots []asmparser.Slot) (catalog.Candidate, error) {
	var fallback *catalog.Candidate
	for i := range cands {
		cand := cands[i]
		if cand.Compressed && !d.Settings.GetAutoCompInst() {
			continue
		}
		vals, _, ok := evalKnownSlots(cand, slots)
		if !ok {
			continue
		}
		if !cand.Predicate.Eval(vals) {
			continue
		}
		if fallback == nil || cand.Metric() < fallback.Metric() {
			f := cand
			fallback = &f
		}
	}
	if fallback == nil {
		return catalog.Candidate{}, fmt.Errorf("WRONG_ARGUMENT: no candidate encoding matches the given arguments")
	}
	return *fallback, nil
}

// evalKnownSlots evaluates every slot it can without label addresses,
// returning placeholder 0 (and deferred=true) for the rest.
func evalKnownSlots(cand catalog.Candidate, slots []asmparser.Slot) (vals []int64, deferred []bool, ok bool) {
	vals = make([]int64, len(slots))
	deferred = make([]bool, len(slots))
	ev := eval.NewEvaluator(nil)
	for i, s := range slots {
		if i >= len(cand.ArgTypes) {
			return nil, nil, false
		}
		at := cand.ArgTypes[i]
		switch {
		case at.Class != argtype.ClassValue:
			idx, regOK := eval.RegisterIndex(s.Expr)
			if !regOK {
				return nil, nil, false
			}
			vals[i] = int64(idx)
			if !at.Matches(vals[i]) {
				return nil, nil, false
			}
		case at.Name == "CSR":
			if v, csrOK := eval.LookupCSR(s.Expr); csrOK {
				vals[i] = v
			} else if v, _, err := ev.Eval(s.Expr); err == nil {
				vals[i] = v
			} else {
				return nil, nil, false
			}
		case at.Name == "FENCESET":
			v, fOK := eval.EvalFenceSet(s.Expr)
			if !fOK {
				return nil, nil, false
			}
			vals[i] = v
		case at.IsPCRelative:
			deferred[i] = true
		default:
			v, valOK, err := ev.EvalPostfixed(s.Expr)
			if err != nil {
				return nil, nil, false
			}
			if !valOK {
				deferred[i] = true
				continue
			}
			vals[i] = int64(v)
			if !at.Matches(vals[i]) {
				return nil, nil, false
			}
		}
	}
	return vals, deferred, true
}

// layoutAndResolve repeatedly lays out sections and re-checks every
// PC-relative argument, widening candidates on range failure, until a
// round makes no changes (spec §4.6 steps 3-4).
func (d *Driver) layoutAndResolve() error {
	const maxRounds = 64
	for round := 0; round < maxRounds; round++ {
		if err := d.layout(); err != nil {
			return err
		}
		d.collectLabels()

		changed := false
		for _, in := range d.insts {
			if in.stmt == nil {
				continue
			}
			ev := eval.NewEvaluator(eval.LabelResolverFunc(d.resolveLabel))
			ok, err := d.checkCandidate(in, ev)
			if err != nil {
				return fmt.Errorf("line %d: %w", in.stmt.LineNum, err)
			}
			if ok {
				continue
			}
			next := d.Catalog.Variants(in.stmt.Mnemonic, in.sigKey, in.candidate.VariantID+1)
			if len(next) == 0 {
				return fmt.Errorf("REL_OUT_OF_RANGE: %q at line %d has no wider encoding", in.stmt.Mnemonic, in.stmt.LineNum)
			}
			in.candidate = next[0]
			in.item.Size = next[0].SizeBytes
			changed = true
		}
		if !changed {
			return nil
		}
	}
	return fmt.Errorf("REL_OUT_OF_RANGE: fix-up loop did not converge")
}

func (d *Driver) layout() error {
	return d.builder.Assign(d.Settings.Mem.RAMStart, d.Settings.Mem.ROMStart)
}

func (d *Driver) collectLabels() {
	d.labelPC = map[string]uint32{}
	for _, in := range d.insts {
		if len(in.labels) == 0 || in.item == nil {
			continue
		}
		for _, l := range in.labels {
			d.labelPC[l] = in.item.Address
		}
	}
}

func (d *Driver) resolveLabel(name string) (int64, bool) {
	if v, ok := eval.LookupConstant(name); ok {
		return v, true
	}
	if v, ok := d.labelPC[name]; ok {
		return int64(v), true
	}
	return 0, false
}

// checkCandidate re-evaluates every deferred slot for in now that label
// addresses are known, returning ok=false if any PC-relative value falls
// outside its type's range (triggering a fix-up widen).
func (d *Driver) checkCandidate(in *inst, ev *eval.Evaluator) (bool, error) {
	cand := in.candidate
	for i, s := range in.slots {
		at := cand.ArgTypes[i]
		if at.Class != argtype.ClassValue || at.Name == "CSR" || at.Name == "FENCESET" {
			continue
		}
		v, ok, err := ev.EvalPostfixed(s.Expr)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, fmt.Errorf("unknown identifier %q", s.Expr)
		}
		value := int64(v)
		if at.IsPCRelative {
			value -= int64(in.item.Address)
		}
		if !at.Matches(value) {
			return false, nil
		}
	}
	return true, nil
}

// emit runs the final encode pass (spec §4.6 step 5), rendering every
// instruction and data statement to bytes and handing the result to the
// Intel HEX serializer.
func (d *Driver) emit() (string, error) {
	var chunks []ihex.Chunk
	for _, in := range d.insts {
		if in.stmt == nil {
			continue // a bare label with no following directive on this statement
		}
		ev := eval.NewEvaluator(eval.LabelResolverFunc(d.resolveLabel))
		args := make([]int32, len(in.slots))
		for i, s := range in.slots {
			at := in.candidate.ArgTypes[i]
			var v int64
			switch {
			case at.Class != argtype.ClassValue:
				idx, _ := eval.RegisterIndex(s.Expr)
				v = int64(idx)
			case at.Name == "CSR":
				if cv, ok := eval.LookupCSR(s.Expr); ok {
					v = cv
				} else {
					iv, _, _ := ev.Eval(s.Expr)
					v = iv
				}
			case at.Name == "FENCESET":
				v, _ = eval.EvalFenceSet(s.Expr)
			default:
				fv, _, err := ev.EvalPostfixed(s.Expr)
				if err != nil {
					return "", fmt.Errorf("line %d: %w", in.stmt.LineNum, err)
				}
				v = int64(fv)
				if at.IsPCRelative {
					v -= int64(in.item.Address)
				}
			}
			args[i] = int32(v)
		}
		bytes, err := bitenc.Encode(in.candidate.Template, args)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", in.stmt.LineNum, err)
		}
		if len(bytes) != in.item.Size {
			return "", fmt.Errorf("internal: line %d encoded %d bytes, expected %d", in.stmt.LineNum, len(bytes), in.item.Size)
		}
		chunks = append(chunks, ihex.Chunk{Address: in.item.Address, Data: bytes})
	}
	for _, row := range d.dataRows {
		bytes, err := encodeDataRow(row)
		if err != nil {
			return "", err
		}
		chunks = append(chunks, ihex.Chunk{Address: row.item.Address, Data: bytes})
	}
	return ihex.Encode(chunks), nil
}

func encodeDataRow(row *dataRow) ([]byte, error) {
	out := make([]byte, 0, row.width*len(row.args))
	for _, a := range row.args {
		n, err := strconv.ParseInt(strings.TrimSpace(a), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("bad data literal %q: %w", a, err)
		}
		for i := 0; i < row.width; i++ {
			out = append(out, byte(n>>uint(8*i)))
		}
	}
	return out, nil
}
