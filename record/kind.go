package record

import (
	"fmt"
	"strings"

	"github.com/c360/randstream/errors"
)

// Kind is the storage type of a field
type Kind int

// Field kinds
const (
	KindUnknown Kind = iota
	KindBool
	KindInt16
	KindInt32
	KindInt64
	KindFloat
	KindDouble
	KindString
)

var kindNames = map[Kind]string{
	KindBool:   "bool",
	KindInt16:  "int16",
	KindInt32:  "int32",
	KindInt64:  "int64",
	KindFloat:  "float",
	KindDouble: "double",
	KindString: "string",
}

// aliases accepted by ParseKind in addition to the canonical names
var kindAliases = map[string]Kind{
	"float32": KindFloat,
	"float64": KindDouble,
	"boolean": KindBool,
}

// String returns the canonical kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind parses a kind name, case-insensitively
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return KindUnknown, errors.WrapInvalid(
		fmt.Errorf("%w: %q", errors.ErrUnsupportedType, s), "Kind", "ParseKind", "kind lookup")
}

// IsNumeric reports whether the kind stores a number
func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt16, KindInt32, KindInt64, KindFloat, KindDouble:
		return true
	default:
		return false
	}
}

// IsInteger reports whether the kind stores an integer
func (k Kind) IsInteger() bool {
	return k == KindInt16 || k == KindInt32 || k == KindInt64
}

// IsOutputKind reports whether a synthesized numeric field may use this kind
func (k Kind) IsOutputKind() bool {
	return k.IsNumeric()
}

// OutputKinds lists the kinds a synthesized numeric field may use
func OutputKinds() []Kind {
	return []Kind{KindDouble, KindFloat, KindInt16, KindInt32, KindInt64}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, errors.WrapInvalid(errors.ErrUnsupportedType, "Kind", "MarshalText", "kind lookup")
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
