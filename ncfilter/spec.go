package ncfilter

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-ncfilter/internal/param"
)

// FilterID identifies a filter. Ranges are a backend convention; this
// package attaches no meaning to particular values beyond the builtins.
type FilterID uint32

// Well-known filter identifiers.
const (
	FilterDeflate    FilterID = 1
	FilterShuffle    FilterID = 2
	FilterFletcher32 FilterID = 3
	FilterSzip       FilterID = 4
	FilterZstd       FilterID = 32015
)

// ListDelimiter separates filter specs in a list.
const ListDelimiter = '|'

// FilterSpec is a filter identifier and its ordered parameter words.
type FilterSpec struct {
	ID     FilterID `yaml:"id"`
	Params []uint32 `yaml:"params,flow"`
}

// Clone returns a deep copy of s.
func (s FilterSpec) Clone() FilterSpec {
	return FilterSpec{ID: s.ID, Params: slices.Clone(s.Params)}
}

// Equal reports whether s and o have the same id and parameter words.
func (s FilterSpec) Equal(o FilterSpec) bool {
	return s.ID == o.ID && slices.Equal(s.Params, o.Params)
}

func (s FilterSpec) String() string {
	return FormatSpec(s)
}

// UnmarshalYAML accepts either spec text ("1,5") or a mapping with id and
// params keys.
func (s *FilterSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		spec, err := ParseSpec(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*s = spec
		return nil
	}

	type plain FilterSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = FilterSpec(p)
	if s.Params == nil {
		s.Params = []uint32{}
	}
	return nil
}

func cloneSpecs(specs []FilterSpec) []FilterSpec {
	out := make([]FilterSpec, len(specs))
	for i, s := range specs {
		out[i] = s.Clone()
	}
	return out
}

// ParseSpec parses "id,value,value,...". Each value is a decimal numeral
// with an optional case-insensitive type suffix:
//
//	(none) int32    u  uint32
//	b      int8     ub uint8
//	s      int16    us uint16
//	ll     int64    ull uint64
//	f      float32  d  float64
//
// 8-bit and 16-bit values are masked to their width and occupy one word.
// 64-bit values occupy two words, low word first, whatever the host byte
// order. A value with no suffix may be any integer in [-2^31, 2^32-1].
func ParseSpec(text string) (FilterSpec, error) {
	return parseSpecAt(text, text, 0)
}

// ParseSpecList parses specs separated by ListDelimiter. Blank input yields
// an empty list.
func ParseSpecList(text string) ([]FilterSpec, error) {
	specs := []FilterSpec{}
	if strings.TrimSpace(text) == "" {
		return specs, nil
	}

	offset := 0
	for _, part := range strings.Split(text, string(ListDelimiter)) {
		spec, err := parseSpecAt(text, part, offset)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
		offset += len(part) + 1
	}
	return specs, nil
}

// FormatSpec renders s as "id,w1u,w2u,..." so that ParseSpec(FormatSpec(s))
// reproduces s exactly.
func FormatSpec(s FilterSpec) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(s.ID), 10))
	for _, w := range s.Params {
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(uint64(w), 10))
		b.WriteByte('u')
	}
	return b.String()
}

// FormatSpecList joins specs with ListDelimiter.
func FormatSpecList(specs []FilterSpec) string {
	parts := make([]string, len(specs))
	for i, s := range specs {
		parts[i] = FormatSpec(s)
	}
	return strings.Join(parts, string(ListDelimiter))
}

// parseSpecAt parses part, which starts at byte offset base of full.
func parseSpecAt(full, part string, base int) (FilterSpec, error) {
	fail := func(pos int, reason string) (FilterSpec, error) {
		return FilterSpec{}, &ParseError{Text: full, Pos: pos, Reason: reason}
	}

	var spec FilterSpec
	pos := base
	for i, field := range strings.Split(part, ",") {
		tok, at := trimToken(field, pos)
		pos += len(field) + 1

		if i == 0 {
			if tok == "" {
				return fail(at, "missing filter id")
			}
			id, err := strconv.ParseUint(tok, 10, 32)
			if err != nil {
				if errors.Is(err, strconv.ErrRange) {
					return fail(at, "filter id out of range")
				}
				return fail(at, "non-numeric filter id "+strconv.Quote(tok))
			}
			spec.ID = FilterID(id)
			continue
		}

		words, reason := parseValue(tok)
		if reason != "" {
			return fail(at, reason)
		}
		spec.Params = append(spec.Params, words...)
	}
	if spec.Params == nil {
		spec.Params = []uint32{}
	}
	return spec, nil
}

// trimToken strips surrounding whitespace from field and returns the
// absolute position of the first remaining byte.
func trimToken(field string, pos int) (string, int) {
	trimmed := strings.TrimLeft(field, " \t\r\n")
	pos += len(field) - len(trimmed)
	return strings.TrimRight(trimmed, " \t\r\n"), pos
}

// splitSuffix separates the trailing letters of a value from its numeral.
func splitSuffix(tok string) (numeral, suffix string) {
	i := len(tok)
	for i > 0 && isLetter(tok[i-1]) {
		i--
	}
	return tok[:i], strings.ToLower(tok[i:])
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// parseValue converts one value token to words, or returns a failure reason.
func parseValue(tok string) ([]uint32, string) {
	if tok == "" {
		return nil, "empty value"
	}
	numeral, suffix := splitSuffix(tok)
	kind, ok := param.KindForSuffix(suffix)
	if !ok {
		return nil, "unknown suffix " + strconv.Quote(suffix)
	}
	if numeral == "" {
		return nil, "missing numeral before suffix " + strconv.Quote(suffix)
	}

	reason := func(err error) string {
		if errors.Is(err, strconv.ErrRange) {
			return "value " + numeral + " out of range for " + kind.String()
		}
		return "malformed numeral " + strconv.Quote(numeral)
	}

	unsigned := strings.TrimPrefix(numeral, "+")

	switch kind {
	case param.KindInt32:
		// A positive numeral is read as unsigned for compatibility.
		if !strings.HasPrefix(numeral, "-") {
			v, err := strconv.ParseUint(unsigned, 10, 32)
			if err != nil {
				return nil, reason(err)
			}
			return param.Encode(uint32(v)), ""
		}
		v, err := strconv.ParseInt(numeral, 10, 32)
		if err != nil {
			return nil, reason(err)
		}
		return param.Encode(int32(v)), ""
	case param.KindUint32, param.KindUint8, param.KindUint16, param.KindUint64:
		v, err := strconv.ParseUint(unsigned, 10, kind.Bits())
		if err != nil {
			return nil, reason(err)
		}
		switch kind {
		case param.KindUint8:
			return param.Encode(uint8(v)), ""
		case param.KindUint16:
			return param.Encode(uint16(v)), ""
		case param.KindUint64:
			return param.Encode(v), ""
		}
		return param.Encode(uint32(v)), ""
	case param.KindInt8, param.KindInt16, param.KindInt64:
		v, err := strconv.ParseInt(numeral, 10, kind.Bits())
		if err != nil {
			return nil, reason(err)
		}
		switch kind {
		case param.KindInt8:
			return param.Encode(int8(v)), ""
		case param.KindInt16:
			return param.Encode(int16(v)), ""
		}
		return param.Encode(v), ""
	case param.KindFloat32:
		v, err := strconv.ParseFloat(numeral, 32)
		if err != nil {
			return nil, reason(err)
		}
		return param.Encode(float32(v)), ""
	case param.KindFloat64:
		v, err := strconv.ParseFloat(numeral, 64)
		if err != nil {
			return nil, reason(err)
		}
		return param.Encode(v), ""
	}
	return nil, "unsupported kind " + kind.String()
}
