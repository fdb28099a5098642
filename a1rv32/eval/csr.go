package eval

import "strings"

// csrAddresses is the predefined CSR name → 12-bit address map consulted
// by CSRRW/CSRRS/.../Zicsr instructions (spec §4.3).
var csrAddresses = map[string]int64{
	"USTATUS":    0x000,
	"FFLAGS":     0x001,
	"FRM":        0x002,
	"FCSR":       0x003,
	"CYCLE":      0xC00,
	"TIME":       0xC01,
	"INSTRET":    0xC02,
	"CYCLEH":     0xC80,
	"TIMEH":      0xC81,
	"INSTRETH":   0xC82,
	"MSTATUS":    0x300,
	"MISA":       0x301,
	"MEDELEG":    0x302,
	"MIDELEG":    0x303,
	"MIE":        0x304,
	"MTVEC":      0x305,
	"MCOUNTEREN": 0x306,
	"MSCRATCH":   0x340,
	"MEPC":       0x341,
	"MCAUSE":     0x342,
	"MTVAL":      0x343,
	"MIP":        0x344,
	"MVENDORID":  0xF11,
	"MARCHID":    0xF12,
	"MIMPID":     0xF13,
	"MHARTID":    0xF14,
}

// LookupCSR resolves a CSR symbolic name to its 12-bit address.
func LookupCSR(name string) (int64, bool) {
	v, ok := csrAddresses[strings.ToUpper(name)]
	return v, ok
}

// fenceBits is the predefined FENCE I/O/R/W letter → bit-value map (spec
// §4.3): each successor/predecessor set is a 4-bit field with I=8, O=4,
// R=2, W=1, OR'd together for the letters present.
var fenceBits = map[byte]int64{'I': 8, 'O': 4, 'R': 2, 'W': 1}

// EvalFenceSet interprets a FENCE operand such as "iorw" or "rw" as the
// OR of its letter bit-values.
func EvalFenceSet(spec string) (int64, bool) {
	var v int64
	for i := 0; i < len(spec); i++ {
		b, ok := fenceBits[upperByte(spec[i])]
		if !ok {
			return 0, false
		}
		v |= b
	}
	return v, true
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// predefinedConstants is the fixed compile-time constant map (spec §4.3).
var predefinedConstants = map[string]int64{
	"TRUE":  1,
	"FALSE": 0,
	"NULL":  0,
}

// LookupConstant resolves a predefined compile-time constant name.
func LookupConstant(name string) (int64, bool) {
	v, ok := predefinedConstants[strings.ToUpper(name)]
	return v, ok
}
