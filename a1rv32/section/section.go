// Package section implements the assembler's section layout pass
// (component C5): named memory regions with alignment and auto-padding
// rules (spec §4.5), populated from the statement stream before addresses
// are resolved.
package section

import "fmt"

// Kind is one of the six named section kinds (spec §3 "Section").
type Kind int

const (
	KindData Kind = iota
	KindHeap
	KindStack
	KindConst
	KindCode
	KindInit
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return ".DATA"
	case KindHeap:
		return ".HEAP"
	case KindStack:
		return ".STACK"
	case KindConst:
		return ".CONST"
	case KindCode:
		return ".CODE"
	case KindInit:
		return ".INIT"
	}
	return "?"
}

// Item is one laid-out statement: its byte size (known once a candidate
// encoding is selected) and its address within the section once assigned.
type Item struct {
	Size    int
	Address uint32
	Tag     interface{} // opaque link back to the owning assembler statement
}

// Section is a named memory region: a run of Items at a contiguous base
// address (spec §3 "Section").
type Section struct {
	Kind         Kind
	TypeModifier string
	Base         uint32
	Items        []*Item
	Alignment    uint32
}

// Size is the sum of every item's current size.
func (s *Section) Size() int {
	total := 0
	for _, it := range s.Items {
		total += it.Size
	}
	return total
}

// Layout accumulates the per-item addresses within s starting at s.Base,
// and returns the section's total (possibly still unpadded) byte size.
func (s *Section) Layout() uint32 {
	addr := s.Base
	for _, it := range s.Items {
		it.Address = addr
		addr += uint32(it.Size)
	}
	return addr - s.Base
}

// Builder assembles the full section list across every input file in
// declaration order, applying the begin/end alignment rules (spec §4.5).
type Builder struct {
	Sections     []*Section
	compressed   bool
	sawStack     bool
}

// NewBuilder creates a Builder. compressed indicates the C extension is
// enabled, which relaxes .CODE/.INIT alignment from 4 to 2 bytes and
// .CONST's end-padding from 4 to 2 bytes.
func NewBuilder(compressed bool) *Builder {
	return &Builder{compressed: compressed}
}

// Begin opens a fresh section of the given kind and appends it to the
// declaration-order list. An earlier section of the same kind is never
// reopened or merged into; Assign places each section after the previous
// one of its memory area (RAM or ROM), in declaration order.
func (b *Builder) Begin(kind Kind, typeModifier string) (*Section, error) {
	if kind == KindStack {
		if b.sawStack {
			return nil, fmt.Errorf("WRONG_SECTION_SIZE: at most one .STACK section is permitted")
		}
		b.sawStack = true
	}
	sec := &Section{Kind: kind, TypeModifier: typeModifier, Alignment: b.codeAlignment(kind)}
	b.Sections = append(b.Sections, sec)
	return sec, nil
}

func (b *Builder) codeAlignment(kind Kind) uint32 {
	switch kind {
	case KindCode, KindInit:
		if b.compressed {
			return 2
		}
		return 4
	case KindConst:
		return 4
	case KindData:
		return 4
	case KindStack:
		return 16
	}
	return 1
}

// PadStart pads the running base address of a .CONST section to a 4-byte
// boundary before its first item (spec §4.5 "on section begin").
func PadStart(base uint32, kind Kind) uint32 {
	if kind != KindConst {
		return base
	}
	return alignUp(base, 4)
}

// EndPad applies the per-kind "on section end" padding rule and returns
// the padded size, or an error if a CODE/INIT section is not already
// aligned.
func (b *Builder) EndPad(s *Section) (uint32, error) {
	size := s.Layout()
	switch s.Kind {
	case KindStack:
		return alignUp(size, 16), nil
	case KindData:
		return alignUp(size, 4), nil
	case KindConst:
		if b.compressed {
			return alignUp(size, 2), nil
		}
		return alignUp(size, 4), nil
	case KindCode, KindInit:
		align := uint32(4)
		if b.compressed {
			align = 2
		}
		if size%align != 0 {
			return 0, fmt.Errorf("WRONG_SECTION_SIZE: %s size %d is not a multiple of %d", s.Kind, size, align)
		}
		return size, nil
	default:
		return size, nil
	}
}

func alignUp(v, align uint32) uint32 {
	if v%align == 0 {
		return v
	}
	return v + (align - v%align)
}

// Assign walks every section in declaration order and assigns final
// addresses, honoring each kind's RAM/ROM base and the begin/end padding
// rules. ramBase/romBase are the memory map origins for RAM-resident
// (.DATA/.HEAP/.STACK) and ROM-resident (.CONST/.CODE/.INIT) sections
// respectively.
func (b *Builder) Assign(ramBase, romBase uint32) error {
	ram := ramBase
	rom := romBase
	for _, s := range b.Sections {
		switch s.Kind {
		case KindData, KindHeap, KindStack:
			s.Base = ram
			_ = s.Layout()
			padded, err := b.EndPad(s)
			if err != nil {
				return err
			}
			ram += padded
		default:
			s.Base = PadStart(rom, s.Kind)
			_ = s.Layout()
			padded, err := b.EndPad(s)
			if err != nil {
				return err
			}
			rom += padded
		}
	}
	return nil
}
