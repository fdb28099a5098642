package ir

import (
	"fmt"
	"strings"
)

// EncodeCommand renders a single Command in the IR text format (spec §6.3).
func EncodeCommand(cmd *Command) string {
	if cmd.Kind == CmdLabel {
		return ":" + cmd.Name
	}
	if cmd.Kind == CmdInlineAsm {
		return cmd.Asm
	}
	var sb strings.Builder
	sb.WriteString(cmd.Name)
	for _, a := range cmd.Args {
		sb.WriteByte(',')
		encodeArg(&sb, a)
	}
	return sb.String()
}

func encodeArg(sb *strings.Builder, a Arg) {
	if len(a) == 0 {
		return
	}
	if a.IsScalar() {
		encodeTypedValue(sb, a[0])
		return
	}
	encodeTypedValue(sb, a[0])
	sb.WriteByte('(')
	for i, s := range a.Subs() {
		if i > 0 {
			sb.WriteByte(',')
		}
		encodeTypedValue(sb, s)
	}
	sb.WriteByte(')')
}

func encodeTypedValue(sb *strings.Builder, v TypedValue) {
	if v.IsEmpty() {
		return
	}
	sb.WriteString(v.Value)
	if v.Type != TypeUnknown {
		sb.WriteByte('<')
		sb.WriteString(v.Type.String())
		sb.WriteByte('>')
	}
}

// EncodeFile renders an entire command list, one statement per line, with
// an optional leading ";" source-line comment emitted ahead of the first
// command carrying a new LineCnt when withSource is true (the "-s" compiler
// flag, spec §6.1/§6.3).
func EncodeFile(cmds []*Command, withSource bool, sourceLine func(lineCnt int32) string) string {
	var sb strings.Builder
	lastLineCnt := int32(-1)
	for _, c := range cmds {
		if withSource && sourceLine != nil && c.LineCnt != lastLineCnt && c.LineCnt > 0 {
			if line := sourceLine(c.LineCnt); line != "" {
				sb.WriteString("; ")
				sb.WriteString(line)
				sb.WriteByte('\n')
			}
			lastLineCnt = c.LineCnt
		}
		sb.WriteString(EncodeCommand(c))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ParseLine parses one line of the IR text format into a Command. Blank
// lines and lines beginning with ";" (source-line comments) return
// (nil, nil).
func ParseLine(line string) (*Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, ";") {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, ":") {
		return &Command{Kind: CmdLabel, Name: trimmed[1:]}, nil
	}

	fields, err := splitTopLevel(trimmed, ',')
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 || fields[0] == "" {
		return nil, fmt.Errorf("empty command")
	}

	cmd := &Command{Kind: CmdOperation, Name: fields[0]}
	for _, f := range fields[1:] {
		arg, err := parseArg(f)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", f, err)
		}
		cmd.Args = append(cmd.Args, arg)
	}
	return cmd, nil
}

func parseArg(field string) (Arg, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return Arg{TypedValue{}}, nil
	}
	if i := strings.IndexByte(field, '('); i >= 0 && strings.HasSuffix(field, ")") {
		head, err := parseTypedValue(field[:i])
		if err != nil {
			return nil, err
		}
		inner := field[i+1 : len(field)-1]
		var subs []string
		if strings.TrimSpace(inner) != "" {
			subs, err = splitTopLevel(inner, ',')
			if err != nil {
				return nil, err
			}
		}
		arg := Arg{head}
		for _, s := range subs {
			tv, err := parseTypedValue(s)
			if err != nil {
				return nil, err
			}
			arg = append(arg, tv)
		}
		return arg, nil
	}
	tv, err := parseTypedValue(field)
	if err != nil {
		return nil, err
	}
	return Arg{tv}, nil
}

func parseTypedValue(s string) (TypedValue, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypedValue{}, nil
	}
	if strings.HasSuffix(s, ">") {
		if i := strings.LastIndexByte(s, '<'); i >= 0 {
			typeName := s[i+1 : len(s)-1]
			t, ok := ParseType(typeName)
			if !ok {
				return TypedValue{}, fmt.Errorf("unknown type suffix %q", typeName)
			}
			return NewTypedValue(s[:i], t), nil
		}
	}
	return NewTypedValue(s, TypeUnknown), nil
}

// splitTopLevel splits s on sep, ignoring separators nested inside double
// quotes or parentheses (so string literals and composite args survive a
// naive split).
func splitTopLevel(s string, sep byte) ([]string, error) {
	var out []string
	depth := 0
	inStr := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' && (i == 0 || s[i-1] != '\\'):
			inStr = !inStr
		case inStr:
			// skip
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in %q", s)
			}
		case c == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if inStr {
		return nil, fmt.Errorf("unterminated string in %q", s)
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in %q", s)
	}
	out = append(out, s[start:])
	return out, nil
}
