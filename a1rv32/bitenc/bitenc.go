// Package bitenc implements the bit-template encoder (component C1): it
// renders a textual bit-field template plus a set of numeric argument
// values into a little-endian byte sequence. This is the innermost layer
// of the RV32 assembler's encoding pipeline, grounded on the teacher's
// encoder package in its role as "take validated values, produce bytes".
package bitenc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/basic1rv32/toolchain/a1rv32/eval"
)

// Token is one parsed element of a bit-template: a literal constant field,
// an extracted-argument field, or the pseudo-instruction separator "|".
type Token struct {
	Literal     bool  // N:W form
	Separator   bool  // "|" form
	Value       int64 // literal value, when Literal
	Width       int   // field width in bits
	ArgIndex    int   // argument index, when an extraction field
	FieldStart  int   // starting bit offset within the argument, when an extraction field
	Postfix     string
}

// ParseTemplate tokenizes a space-separated template string (spec §4.1).
func ParseTemplate(template string) ([]Token, error) {
	var toks []Token
	for _, field := range strings.Fields(template) {
		if field == "|" {
			toks = append(toks, Token{Separator: true})
			continue
		}
		if strings.HasPrefix(field, "{") {
			tok, err := parseExtractToken(field)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			continue
		}
		tok, err := parseLiteralToken(field)
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

// parseLiteralToken parses "N:W" where N and W are hexadecimal.
func parseLiteralToken(field string) (Token, error) {
	parts := strings.SplitN(field, ":", 2)
	if len(parts) != 2 {
		return Token{}, fmt.Errorf("BAD_TEMPLATE: malformed literal field %q", field)
	}
	n, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil {
		return Token{}, fmt.Errorf("BAD_TEMPLATE: bad literal value in %q: %w", field, err)
	}
	w, err := strconv.ParseInt(parts[1], 16, 64)
	if err != nil || w <= 0 {
		return Token{}, fmt.Errorf("BAD_TEMPLATE: bad literal width in %q", field)
	}
	return Token{Literal: true, Value: n, Width: int(w)}, nil
}

// parseExtractToken parses "{a:b:W}" where a is the argument index (and an
// optional ".postfix"), b the extraction start bit, W the field width, all
// hexadecimal except the argument index which may carry a postfix suffix.
func parseExtractToken(field string) (Token, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(field, "{"), "}")
	if inner == field {
		return Token{}, fmt.Errorf("BAD_TEMPLATE: unterminated extraction field %q", field)
	}
	parts := strings.Split(inner, ":")
	if len(parts) != 3 {
		return Token{}, fmt.Errorf("BAD_TEMPLATE: extraction field %q needs 3 components", field)
	}
	argSpec, postfix, _ := eval.SplitPostfix(parts[0])
	argIdx, err := strconv.Atoi(argSpec)
	if err != nil {
		return Token{}, fmt.Errorf("BAD_TEMPLATE: bad argument index in %q", field)
	}
	start, err := strconv.ParseInt(parts[1], 16, 64)
	if err != nil {
		return Token{}, fmt.Errorf("BAD_TEMPLATE: bad field start in %q", field)
	}
	width, err := strconv.ParseInt(parts[2], 16, 64)
	if err != nil || width <= 0 {
		return Token{}, fmt.Errorf("BAD_TEMPLATE: bad field width in %q", field)
	}
	return Token{ArgIndex: argIdx, FieldStart: int(start), Width: int(width), Postfix: postfix}, nil
}

// Segments splits a parsed template at its "|" separators, one segment per
// expanded instruction word.
func Segments(toks []Token) [][]Token {
	var segs [][]Token
	var cur []Token
	for _, t := range toks {
		if t.Separator {
			segs = append(segs, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	segs = append(segs, cur)
	return segs
}

// Encode renders a full template against resolved argument values (one
// int32 per argument index referenced by the template) into a little-endian
// byte buffer, one instruction word per "|"-separated segment.
func Encode(template string, args []int32) ([]byte, error) {
	toks, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	var out []byte
	for _, seg := range Segments(toks) {
		word, bits, err := encodeSegment(seg, args)
		if err != nil {
			return nil, err
		}
		if bits%16 != 0 {
			return nil, fmt.Errorf("BAD_TEMPLATE: segment width %d is not a multiple of 16 bits", bits)
		}
		out = append(out, wordBytes(word, bits/8)...)
	}
	return out, nil
}

// encodeSegment concatenates a segment's fields MSB→LSB into a single
// unsigned word and returns the word plus its total bit width.
func encodeSegment(seg []Token, args []int32) (uint64, int, error) {
	var word uint64
	var bits int
	for _, t := range seg {
		var v int64
		if t.Literal {
			v = t.Value
		} else {
			if t.ArgIndex < 0 || t.ArgIndex >= len(args) {
				return 0, 0, fmt.Errorf("BAD_TEMPLATE: argument index %d out of range", t.ArgIndex)
			}
			raw := args[t.ArgIndex]
			if t.Postfix != "" {
				pv, err := eval.ApplyPostfix(raw, t.Postfix)
				if err != nil {
					return 0, 0, err
				}
				raw = pv
			}
			v = int64(uint32(raw)) >> uint(t.FieldStart)
		}
		mask := int64(1)<<uint(t.Width) - 1
		if t.Literal && (v < 0 || v > mask) {
			return 0, 0, fmt.Errorf("BAD_TEMPLATE: literal value %d does not fit in %d bits", v, t.Width)
		}
		field := v & mask
		word = (word << uint(t.Width)) | uint64(field)
		bits += t.Width
	}
	return word, bits, nil
}

// wordBytes renders word as n little-endian bytes.
func wordBytes(word uint64, n int) []byte {
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		b[i] = byte(word >> uint(8*(n-1-i)))
	}
	// the word was built MSB-first; reverse to little-endian byte order
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
