package param

import "fmt"

// Kind identifies the scalar type of one filter parameter value.
type Kind uint8

const (
	KindInt32 Kind = iota // no suffix
	KindUint32            // u
	KindInt8              // b
	KindUint8             // ub
	KindInt16             // s
	KindUint16            // us
	KindInt64             // ll
	KindUint64            // ull
	KindFloat32           // f
	KindFloat64           // d
)

var kindNames = [...]string{
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindInt8:    "int8",
	KindUint8:   "uint8",
	KindInt16:   "int16",
	KindUint16:  "uint16",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Words returns the number of parameter words a value of this kind occupies.
func (k Kind) Words() int {
	if k.Wide() {
		return 2
	}
	return 1
}

// Wide reports whether the kind is 8 bytes wide.
func (k Kind) Wide() bool {
	switch k {
	case KindInt64, KindUint64, KindFloat64:
		return true
	}
	return false
}

// Bits returns the declared width of the kind in bits.
func (k Kind) Bits() int {
	switch k {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt64, KindUint64, KindFloat64:
		return 64
	default:
		return 32
	}
}

// suffixes maps lower-cased filter-spec suffixes to kinds. "l" and "ul" are
// older spellings of "ll" and "ull".
var suffixes = map[string]Kind{
	"":    KindInt32,
	"u":   KindUint32,
	"b":   KindInt8,
	"ub":  KindUint8,
	"s":   KindInt16,
	"us":  KindUint16,
	"l":   KindInt64,
	"ll":  KindInt64,
	"ul":  KindUint64,
	"ull": KindUint64,
	"f":   KindFloat32,
	"d":   KindFloat64,
}

// KindForSuffix returns the kind named by a lower-case suffix.
func KindForSuffix(suffix string) (Kind, bool) {
	k, ok := suffixes[suffix]
	return k, ok
}

// Suffix returns the canonical suffix for the kind.
func (k Kind) Suffix() string {
	switch k {
	case KindUint32:
		return "u"
	case KindInt8:
		return "b"
	case KindUint8:
		return "ub"
	case KindInt16:
		return "s"
	case KindUint16:
		return "us"
	case KindInt64:
		return "ll"
	case KindUint64:
		return "ull"
	case KindFloat32:
		return "f"
	case KindFloat64:
		return "d"
	default:
		return ""
	}
}
