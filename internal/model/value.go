package model

import (
	"fmt"
	"strings"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	// ValueNull is an explicit null (or an empty YAML value).
	ValueNull ValueKind = iota
	// ValueString is a string scalar.
	ValueString
	// ValueNumber is an integer or float scalar, kept as its literal text.
	ValueNumber
	// ValueBool is a boolean scalar.
	ValueBool
	// ValueList is a sequence of values.
	ValueList
	// ValueMap is an ordered mapping of string keys to values.
	ValueMap
)

// String returns the name of the kind.
func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueList:
		return "list"
	case ValueMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is the closed variant used for task and file level env/vars.
// Numbers keep their literal text so that "1.10" survives a round trip.
type Value struct {
	Kind ValueKind
	Str  string
	Bool bool
	List []Value
	Map  *OrderedMap[Value]
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

// NumberValue returns a number Value from its literal text.
func NumberValue(literal string) Value {
	return Value{Kind: ValueNumber, Str: literal}
}

// BoolValue returns a bool Value.
func BoolValue(b bool) Value {
	return Value{Kind: ValueBool, Bool: b}
}

// ListValue returns a list Value.
func ListValue(items ...Value) Value {
	return Value{Kind: ValueList, List: items}
}

// MapValue returns a map Value.
func MapValue(m *OrderedMap[Value]) Value {
	if m == nil {
		m = NewOrderedMap[Value]()
	}
	return Value{Kind: ValueMap, Map: m}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.Kind {
	case ValueString, ValueNumber:
		return v.Str
	case ValueBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValueList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case ValueMap:
		var parts []string
		for k, item := range v.Map.All() {
			parts = append(parts, k+": "+item.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "null"
	}
}
