package ir

// ReplaceDst rewrites cmd's destination argument to arg when its current
// destination is exactly val (a scalar). Returns whether a replacement was
// made. Grounded on B1CUtils::replace_dst.
func ReplaceDst(cmd *Command, val string, arg Arg) bool {
	dst, ok := cmd.Dst()
	if !ok || !dst.IsScalar() || dst.Name() != val {
		return false
	}
	for i, a := range cmd.Args {
		if a.Equal(dst) {
			cmd.Args[i] = arg
			return true
		}
	}
	return false
}

// ReplaceSrc rewrites every source argument of cmd that is exactly val
// (scalar) to arg. Returns the number of replacements made. Grounded on
// B1CUtils::replace_src.
func ReplaceSrc(cmd *Command, val string, arg Arg) int {
	dst, hasDst := cmd.Dst()
	count := 0
	for i, a := range cmd.Args {
		if hasDst && a.Equal(dst) {
			continue
		}
		if a.IsScalar() && a.Name() == val {
			cmd.Args[i] = arg
			count++
		}
	}
	return count
}

// ReplaceAll rewrites every occurrence of val, source or destination, in
// cmd to arg. Grounded on B1CUtils::replace_all.
func ReplaceAll(cmd *Command, val string, arg Arg) int {
	count := 0
	for i, a := range cmd.Args {
		if a.IsScalar() && a.Name() == val {
			cmd.Args[i] = arg
			count++
		}
	}
	return count
}

// LocalCompatTypes reports whether a local of baseType may be reused in
// place of one declared reuseType: same bit width and both numeric, or
// identical types. Grounded on B1CUtils::local_compat_types.
func LocalCompatTypes(base, reuse Type) bool {
	if base == reuse {
		return true
	}
	if base.IsNumeric() && reuse.IsNumeric() {
		return base.BitWidth() == reuse.BitWidth()
	}
	return false
}

// AsmType describes how a BASIC type is represented in generated RV32
// assembly: word size, repeat count for fixed arrays, and a mnemonic used
// in .DATA/.CONST layout comments. Grounded on B1CUtils::get_asm_type.
type AsmType struct {
	Name string
	Size int32
	Rep  int32
}

// GetAsmType maps a BASIC type (and, for arrays, a dimension count) onto
// its RV32-side storage representation.
func GetAsmType(t Type, dimNum int) (AsmType, bool) {
	switch t {
	case TypeByte:
		return AsmType{"BYTE", 1, int32(dimNum)}, true
	case TypeInt, TypeWord:
		return AsmType{"WORD", 2, int32(dimNum)}, true
	case TypeLong:
		return AsmType{"LONG", 4, int32(dimNum)}, true
	case TypeString:
		return AsmType{"STRING", 1, int32(dimNum)}, true
	default:
		return AsmType{}, false
	}
}
