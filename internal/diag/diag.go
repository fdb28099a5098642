// Package diag implements the structured error and warning taxonomy shared
// by the BASIC compiler and the RV32 assembler.
package diag

import (
	"fmt"
	"strings"
)

// Position locates a diagnostic in a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Kind categorizes a diagnostic per spec §7.
type Kind int

const (
	// Syntax
	KindSyntax Kind = iota
	KindInvalidLineNumber
	KindInvalidStatement
	KindUnbalancedBrackets
	KindWrongArgCount
	KindUnexpectedEOF

	// Semantic
	KindTypeMismatch
	KindSubscriptOutOfRange
	KindAlreadyInUse
	KindUnknownIdentifier
	KindRedefinition
	KindConstNoInit
	KindConstExplicitAddress
	KindNextWithoutFor
	KindWendWithoutWhile
	KindElseWithoutIf

	// Numeric
	KindInvalidNumber
	KindNumericOverflow
	KindDivideByZero

	// Resource
	KindFileOpen
	KindFileWrite
	KindMemoryExhausted

	// Target
	KindInvalidInstruction
	KindWrongArgument
	KindRelOutOfRange
	KindWrongSectionSize
	KindUnknownDevice

	// Configuration
	KindIncompatibleOptions

	// Internal
	KindInternal
)

var kindNames = map[Kind]string{
	KindSyntax:               "syntax error",
	KindInvalidLineNumber:    "invalid line number",
	KindInvalidStatement:     "invalid statement",
	KindUnbalancedBrackets:   "unbalanced brackets",
	KindWrongArgCount:        "wrong argument count",
	KindUnexpectedEOF:        "unexpected end of program",
	KindTypeMismatch:         "type mismatch",
	KindSubscriptOutOfRange:  "subscript out of range",
	KindAlreadyInUse:         "identifier already in use",
	KindUnknownIdentifier:    "unknown identifier",
	KindRedefinition:         "redefining variable with different type or dimensions",
	KindConstNoInit:          "CONST without initializer",
	KindConstExplicitAddress: "CONST with explicit address",
	KindNextWithoutFor:       "NEXT without FOR",
	KindWendWithoutWhile:     "WEND without WHILE",
	KindElseWithoutIf:        "ELSE without IF",
	KindInvalidNumber:        "invalid number",
	KindNumericOverflow:      "numeric overflow",
	KindDivideByZero:         "divide by zero",
	KindFileOpen:             "file open failure",
	KindFileWrite:            "file write failure",
	KindMemoryExhausted:      "memory exhausted",
	KindInvalidInstruction:   "invalid instruction",
	KindWrongArgument:        "wrong argument",
	KindRelOutOfRange:        "relative offset out of range",
	KindWrongSectionSize:     "wrong section size",
	KindUnknownDevice:        "unknown I/O device or command",
	KindIncompatibleOptions:  "incompatible options across files",
	KindInternal:             "internal error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Diag is a single structured error.
type Diag struct {
	Pos     Position
	Kind    Kind
	Message string
	Context string
}

// New creates a Diag without source context.
func New(pos Position, kind Kind, message string) *Diag {
	return &Diag{Pos: pos, Kind: kind, Message: message}
}

// NewWithContext creates a Diag carrying the offending source line.
func NewWithContext(pos Position, kind Kind, message, context string) *Diag {
	return &Diag{Pos: pos, Kind: kind, Message: message, Context: context}
}

func (d *Diag) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s: %s\n", d.Pos, d.Kind, d.Message)
	if d.Context != "" {
		fmt.Fprintf(&sb, "    %s\n", d.Context)
	}
	return sb.String()
}

// Warning is a non-fatal diagnostic, accumulated per line and flushed at
// program exit (spec §7).
type Warning struct {
	Pos     Position
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// List collects the errors and warnings produced while processing one file
// or one compiler invocation. It plays the role the teacher's
// parser.ErrorList plays for the assembler frontend.
type List struct {
	Errors   []*Diag
	Warnings []*Warning
}

func (l *List) AddError(d *Diag) { l.Errors = append(l.Errors, d) }

func (l *List) AddWarning(w *Warning) { l.Warnings = append(l.Warnings, w) }

func (l *List) HasErrors() bool { return len(l.Errors) > 0 }

func (l *List) Error() string {
	if !l.HasErrors() {
		return ""
	}
	var sb strings.Builder
	for _, e := range l.Errors {
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// PrintWarnings renders every accumulated warning, one per line.
func (l *List) PrintWarnings() string {
	if len(l.Warnings) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, w := range l.Warnings {
		sb.WriteString(w.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// First returns the first error, or nil.
func (l *List) First() *Diag {
	if len(l.Errors) == 0 {
		return nil
	}
	return l.Errors[0]
}

// Merge appends another list's errors and warnings onto l.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.Errors = append(l.Errors, other.Errors...)
	l.Warnings = append(l.Warnings, other.Warnings...)
}
