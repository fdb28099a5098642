package ir

import (
	"fmt"
	"strings"
)

// CmdKind is one of the three IR command shapes (spec §3, "IR command").
type CmdKind int

const (
	CmdLabel CmdKind = iota
	CmdOperation
	CmdInlineAsm
)

// Command is a single IR statement.
type Command struct {
	Kind CmdKind
	Name string // label name, or operation mnemonic; unused for CmdInlineAsm
	Args []Arg
	Asm  string // raw text for CmdInlineAsm

	LineNum   int32 // originating BASIC source line number, for diagnostics
	LineCnt   int32 // 1-based running line count within the file
	SrcFileID int32
	SrcLineID int32
}

// IsLabel reports whether cmd is a label.
func (c *Command) IsLabel() bool { return c.Kind == CmdLabel }

// IsOperation reports whether cmd is an operation.
func (c *Command) IsOperation() bool { return c.Kind == CmdOperation }

// IsInlineAsm reports whether cmd is an opaque inline-asm block.
func (c *Command) IsInlineAsm() bool { return c.Kind == CmdInlineAsm }

// IsUnaryOp reports whether cmd is the 2-argument (value, dst) form of a
// unary operator.
func (c *Command) IsUnaryOp() bool {
	return c.Kind == CmdOperation && UnOps[c.Name] && len(c.Args) == 2
}

// IsBinaryOp reports whether cmd is the 3-argument (a, b, dst) form of a
// binary operator.
func (c *Command) IsBinaryOp() bool {
	return c.Kind == CmdOperation && BinOps[c.Name] && len(c.Args) == 3
}

// IsCompare reports whether cmd is one of the six comparison mnemonics.
func (c *Command) IsCompare() bool {
	return c.Kind == CmdOperation && LogOps[c.Name]
}

// IsDefFn reports a DEF record.
func (c *Command) IsDefFn() bool { return c.Kind == CmdOperation && c.Name == MnDefFn }

// Dst returns the destination argument of commands that write to a single
// named location (assignment, unary/binary op, READ). ok is false for
// commands with no single destination.
func (c *Command) Dst() (Arg, bool) {
	if c.Kind != CmdOperation {
		return nil, false
	}
	switch c.Name {
	case MnAssign:
		if len(c.Args) == 2 {
			return c.Args[1], true
		}
	case MnRead:
		if len(c.Args) == 2 {
			return c.Args[1], true
		}
	default:
		if (UnOps[c.Name] && len(c.Args) == 2) || (BinOps[c.Name] && len(c.Args) == 3) {
			return c.Args[len(c.Args)-1], true
		}
	}
	return nil, false
}

// Srcs returns every argument read by cmd (everything that is not the
// single destination slot, for commands that have one).
func (c *Command) Srcs() []Arg {
	if c.Kind != CmdOperation {
		return nil
	}
	dst, hasDst := c.Dst()
	var out []Arg
	for _, a := range c.Args {
		if hasDst && a.Equal(dst) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// IsSrc reports whether val is read by cmd (appears as a source argument,
// or anywhere inside a composite argument's subscripts). Grounded on
// B1CUtils::is_src.
func (c *Command) IsSrc(val string) bool {
	for _, a := range c.Srcs() {
		if a.References(val) {
			return true
		}
	}
	return false
}

// IsDst reports whether val is exactly the scalar destination written by
// cmd. Grounded on B1CUtils::is_dst.
func (c *Command) IsDst(val string) bool {
	dst, ok := c.Dst()
	if !ok {
		return false
	}
	return dst.IsScalar() && dst.Name() == val
}

// IsSubOrArg reports whether val appears as a subscript/call argument
// anywhere in cmd (read positions inside composite args), including inside
// the destination's own subscripts (e.g. A(I) = ... reads I).
func (c *Command) IsSubOrArg(val string) bool {
	for _, a := range c.Args {
		for _, s := range a.Subs() {
			if s.Value == val {
				return true
			}
		}
	}
	return false
}

// IsUsed reports whether val is read anywhere in cmd: as a source, or as a
// subscript/call argument of any argument including the destination.
// Grounded on B1CUtils::is_used.
func (c *Command) IsUsed(val string) bool {
	return c.IsSrc(val) || c.IsSubOrArg(val)
}

// MayTouchAnyGlobal reports whether executing cmd may read or write any
// global/volatile state outside its explicit arguments — true for CALLs to
// user functions and for I/O (spec §4.10 pass 5: these block
// duplicate-assignment removal).
func (c *Command) MayTouchAnyGlobal() bool {
	if c.Kind == CmdInlineAsm {
		return true
	}
	switch c.Name {
	case MnCall, MnIn, MnOut, MnGet, MnPut, MnTransfer, MnIoctl, MnRead, MnRestore:
		return true
	}
	return false
}

func (c *Command) String() string {
	switch c.Kind {
	case CmdLabel:
		return ":" + c.Name
	case CmdInlineAsm:
		return c.Asm
	default:
		var sb strings.Builder
		sb.WriteString(c.Name)
		for _, a := range c.Args {
			sb.WriteByte(',')
			sb.WriteString(a.String())
		}
		return sb.String()
	}
}

// Commands is the mutable IR statement list built by the BASIC front-end
// and consumed by the optimizer. It mirrors B1_CMP_CMDS: emit_label,
// emit_local, emit_command, plus namespace/label/local counters.
type Commands struct {
	Items []*Command

	namespace string
	nextLabel int
	nextLocal int

	curLineNum   int32
	curLineCnt   int32
	curSrcFileID int32
	curSrcLineID int32
}

// NewCommands creates an empty Commands list for one namespace (source
// file); next label/local counters may be seeded to continue numbering
// from a resumed file (rare, kept for parity with B1_CMP_CMDS's
// constructor).
func NewCommands(namespace string, nextLabel, nextLocal int) *Commands {
	return &Commands{namespace: namespace, nextLabel: nextLabel, nextLocal: nextLocal}
}

// Namespace returns the "NSk::" prefix used to qualify generated names.
func (c *Commands) Namespace() string { return c.namespace }

func (c *Commands) NamePrefix() string {
	if c.namespace == "" {
		return ""
	}
	return c.namespace + "::"
}

// SetPos records the source position metadata attached to subsequently
// emitted commands.
func (c *Commands) SetPos(lineNum, lineCnt, srcFileID, srcLineID int32) {
	c.curLineNum, c.curLineCnt, c.curSrcFileID, c.curSrcLineID = lineNum, lineCnt, srcFileID, srcLineID
}

// EmitLabel appends (or returns, if genNameOnly) an auto-generated label:
// "<ns>::__ALB_<k>".
func (c *Commands) EmitLabel() string {
	name := fmt.Sprintf("%s__ALB_%d", c.NamePrefix(), c.nextLabel)
	c.nextLabel++
	c.Items = append(c.Items, c.newCmd(CmdLabel, name, nil))
	return name
}

// EmitNamedLabel appends a label with an explicit name (e.g. a source-line
// label "__ULB_<n>" or a user DEF/INT marker).
func (c *Commands) EmitNamedLabel(name string) {
	c.Items = append(c.Items, c.newCmd(CmdLabel, name, nil))
}

// EmitLocal allocates a new temporary "<ns>::__LCL_<k>" of type t, appends
// its LA, and returns the generated name. The caller must append a matching
// LF when the local's lifetime ends.
func (c *Commands) EmitLocal(t Type) string {
	name := fmt.Sprintf("%s__LCL_%d", c.NamePrefix(), c.nextLocal)
	c.nextLocal++
	c.Emit(MnLocalAlloc, Arg{NewTypedValue(name, TypeVarRef)}, Arg{NewTypedValue("", t)})
	return name
}

// EmitLocalFree appends the LF matching a prior EmitLocal.
func (c *Commands) EmitLocalFree(name string) {
	c.Emit(MnLocalFree, Arg{NewTypedValue(name, TypeVarRef)})
}

// Emit appends a generic operation command.
func (c *Commands) Emit(mnemonic string, args ...Arg) *Command {
	cmd := c.newCmd(CmdOperation, mnemonic, args)
	c.Items = append(c.Items, cmd)
	return cmd
}

// EmitInlineAsm appends an opaque inline-asm block.
func (c *Commands) EmitInlineAsm(text string) *Command {
	cmd := &Command{Kind: CmdInlineAsm, Asm: text, LineNum: c.curLineNum, LineCnt: c.curLineCnt,
		SrcFileID: c.curSrcFileID, SrcLineID: c.curSrcLineID}
	c.Items = append(c.Items, cmd)
	return cmd
}

func (c *Commands) newCmd(kind CmdKind, name string, args []Arg) *Command {
	return &Command{Kind: kind, Name: name, Args: args, LineNum: c.curLineNum, LineCnt: c.curLineCnt,
		SrcFileID: c.curSrcFileID, SrcLineID: c.curSrcLineID}
}

// IsGenLocal reports whether s is an auto-generated local name
// ("<ns>::__LCL_<k>").
func IsGenLocal(s string) bool {
	return containsMarker(s, "__LCL_")
}

// IsGenLabel reports whether s is an auto-generated label name.
func IsGenLabel(s string) bool {
	return containsMarker(s, "__ALB_")
}

// IsSourceLabel reports whether s is a source-line label ("__ULB_<n>").
func IsSourceLabel(s string) bool {
	return containsMarker(s, "__ULB_")
}

// IsFnArg reports whether s is a formal function argument placeholder
// ("__ARG_<i>").
func IsFnArg(s string) bool {
	return containsMarker(s, "__ARG_")
}

// FnArgIndex returns the index i of an "__ARG_<i>" name, or -1.
func FnArgIndex(s string) int {
	idx := strings.LastIndex(s, "__ARG_")
	if idx < 0 {
		return -1
	}
	var n int
	if _, err := fmt.Sscanf(s[idx+len("__ARG_"):], "%d", &n); err != nil {
		return -1
	}
	return n
}

func containsMarker(s, marker string) bool {
	return strings.Contains(s, marker)
}
