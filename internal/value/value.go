package value

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"
)

// Type is the tag declared by a port.
type Type string

const (
	TypeString     Type = "string"
	TypeInt        Type = "int"
	TypeBool       Type = "bool"
	TypeTime       Type = "time"
	TypeDuration   Type = "duration"
	TypeStringList Type = "strings"
)

// Types lists every valid tag in declaration order.
var Types = []Type{TypeString, TypeInt, TypeBool, TypeTime, TypeDuration, TypeStringList}

// Valid reports whether t is one of the known tags.
func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

// ParseType converts a tag name into a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown value type %q: must be one of %v", s, Types)
	}
	return t, nil
}

// Value is a sealed interface. Only the types in this package implement it.
type Value interface {
	Type() Type
	value()
}

// String is a text payload.
type String string

func (String) Type() Type { return TypeString }
func (String) value()     {}

// Int is an integer payload.
type Int int64

func (Int) Type() Type { return TypeInt }
func (Int) value()     {}

// Bool is a boolean payload.
type Bool bool

func (Bool) Type() Type { return TypeBool }
func (Bool) value()     {}

// Time is an instant. Use NewTime to get the UTC normalisation.
type Time time.Time

func (Time) Type() Type { return TypeTime }
func (Time) value()     {}

// Std returns the wrapped time.Time.
func (t Time) Std() time.Time { return time.Time(t) }

// Duration is a span of time.
type Duration time.Duration

func (Duration) Type() Type { return TypeDuration }
func (Duration) value()     {}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// StringList is an ordered list of strings.
type StringList []string

func (StringList) Type() Type { return TypeStringList }
func (StringList) value()     {}

// NewTime wraps t in UTC.
func NewTime(t time.Time) Time {
	return Time(t.UTC())
}

// NewStringList copies items into a StringList.
func NewStringList(items ...string) StringList {
	return StringList(slices.Clone(items))
}

// Map holds values keyed by port name.
type Map map[string]Value

// SortedKeys returns keys in RFC 8785 order.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// Clone returns a copy of m. StringList payloads are copied too.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		if l, ok := v.(StringList); ok {
			v = NewStringList(l...)
		}
		out[k] = v
	}
	return out
}

// Equal reports whether a and b carry the same type and payload.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case Time:
		return av.Std().Equal(b.(Time).Std())
	case StringList:
		return slices.Equal(av, b.(StringList))
	default:
		return a == b
	}
}

// FromAny converts a decoded document value (YAML, JSON or CUE) into a Value
// of the requested type.
//
// Accepted inputs per type:
//   - string:   string
//   - int:      any Go integer, integral float64, json.Number
//   - bool:     bool
//   - time:     time.Time or an RFC 3339 string
//   - duration: time.Duration or a time.ParseDuration string
//   - strings:  []string or []any of strings
func FromAny(t Type, raw any) (Value, error) {
	switch t {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, typeErr(t, raw)
		}
		return String(s), nil
	case TypeInt:
		n, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, typeErr(t, raw)
		}
		return Bool(b), nil
	case TypeTime:
		switch v := raw.(type) {
		case time.Time:
			return NewTime(v), nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("invalid time %q: %w", v, err)
			}
			return NewTime(parsed), nil
		}
		return nil, typeErr(t, raw)
	case TypeDuration:
		switch v := raw.(type) {
		case time.Duration:
			return Duration(v), nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid duration %q: %w", v, err)
			}
			return Duration(d), nil
		}
		return nil, typeErr(t, raw)
	case TypeStringList:
		switch v := raw.(type) {
		case []string:
			return NewStringList(v...), nil
		case []any:
			out := make(StringList, len(v))
			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("strings[%d]: %w", i, typeErr(TypeString, item))
				}
				out[i] = s
			}
			return out, nil
		}
		return nil, typeErr(t, raw)
	default:
		return nil, fmt.Errorf("unknown value type %q", t)
	}
}

// ToAny converts v into a plain Go value that FromAny accepts back.
// Times become RFC 3339 strings and durations become duration strings so the
// result survives YAML and JSON encoders unchanged.
func ToAny(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		return bool(val)
	case Time:
		return val.Std().UTC().Format(time.RFC3339Nano)
	case Duration:
		return val.Std().String()
	case StringList:
		return []string(slices.Clone(val))
	default:
		return nil
	}
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d out of int64 range", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || v >= 1<<63 || v < math.MinInt64 {
			return 0, fmt.Errorf("floats are not a port type: %v", v)
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("floats are not a port type: %s", v)
		}
		return n, nil
	default:
		return 0, typeErr(TypeInt, raw)
	}
}

func typeErr(t Type, raw any) error {
	return fmt.Errorf("expected %s, got %T", t, raw)
}
