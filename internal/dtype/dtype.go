package dtype

import (
	"fmt"
	"reflect"
	"strings"
)

// Type is an atomic element type.
type Type uint8

const (
	Invalid Type = iota
	Byte
	UByte
	Char
	Short
	UShort
	Int
	UInt
	Int64
	UInt64
	Float
	Double
	String
)

type info struct {
	name string
	size int
}

var types = [...]info{
	Byte:   {"byte", 1},
	UByte:  {"ubyte", 1},
	Char:   {"char", 1},
	Short:  {"short", 2},
	UShort: {"ushort", 2},
	Int:    {"int", 4},
	UInt:   {"uint", 4},
	Int64:  {"int64", 8},
	UInt64: {"uint64", 8},
	Float:  {"float", 4},
	Double: {"double", 8},
	String: {"string", 8},
}

// aliases are accepted by Parse in addition to the canonical names.
var aliases = map[string]Type{
	"long":    Int,
	"real":    Float,
	"int8":    Byte,
	"uint8":   UByte,
	"int16":   Short,
	"uint16":  UShort,
	"int32":   Int,
	"uint32":  UInt,
	"float32": Float,
	"float64": Double,
}

// Parse returns the type with the given name. Names are case-insensitive.
func Parse(name string) (Type, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for t := Byte; t <= String; t++ {
		if types[t].name == key {
			return t, nil
		}
	}
	if t, ok := aliases[key]; ok {
		return t, nil
	}
	return Invalid, fmt.Errorf("unknown element type %q", name)
}

func (t Type) valid() bool {
	return t > Invalid && t <= String
}

func (t Type) String() string {
	if !t.valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return types[t].name
}

// Size returns the size of one element in bytes, or 0 for Invalid.
func (t Type) Size() int {
	if !t.valid() {
		return 0
	}
	return types[t].size
}

// VarLen reports whether elements are variable-length.
func (t Type) VarLen() bool {
	return t == String
}

// ForGoType returns the element type for a Go type. Slices and arrays map
// to their element type.
func ForGoType(rt reflect.Type) (Type, error) {
	for rt.Kind() == reflect.Slice || rt.Kind() == reflect.Array {
		rt = rt.Elem()
	}

	switch rt.Kind() {
	case reflect.Int8:
		return Byte, nil
	case reflect.Uint8:
		return UByte, nil
	case reflect.Int16:
		return Short, nil
	case reflect.Uint16:
		return UShort, nil
	case reflect.Int32:
		return Int, nil
	case reflect.Uint32:
		return UInt, nil
	case reflect.Int64:
		return Int64, nil
	case reflect.Uint64:
		return UInt64, nil
	case reflect.Float32:
		return Float, nil
	case reflect.Float64:
		return Double, nil
	case reflect.String:
		return String, nil
	default:
		return Invalid, fmt.Errorf("no element type for Go type %v", rt)
	}
}
