package clausewitz

import (
	"fmt"
	"strconv"
	"strings"
)

// =========================
// AST Definitions
// =========================

type ValueKind string

var valueKinds = struct {
	String  ValueKind
	Integer ValueKind
	Real    ValueKind
	Date    ValueKind
	Percent ValueKind
	Array   ValueKind
	Map     ValueKind
}{
	String:  "string",
	Integer: "integer",
	Real:    "real",
	Date:    "date",
	Percent: "percent",
	Array:   "array",
	Map:     "map",
}

var (
	KindString  = valueKinds.String
	KindInteger = valueKinds.Integer
	KindReal    = valueKinds.Real
	KindDate    = valueKinds.Date
	KindPercent = valueKinds.Percent
	KindArray   = valueKinds.Array
	KindMap     = valueKinds.Map
)

// Value is the closed set of script values. Only the types in this file
// implement it.
type Value interface {
	Kind() ValueKind
	// Text is the scalar's spelling as a downstream consumer sees it:
	// strings without quotes, numbers in canonical form. Composite values
	// return an empty string.
	Text() string
	isValue()
}

// -------- String --------

// String is a quoted string or a bare symbol such as yes, and or @var.
type String struct {
	V      string
	Quoted bool
}

func (String) Kind() ValueKind { return valueKinds.String }
func (v String) Text() string { return v.V }
func (String) isValue() {}
func (v String) IsVariable() bool { return !v.Quoted && strings.HasPrefix(v.V, "@") }

// -------- Integer --------

type Integer struct {
	V int64
}

func (Integer) Kind() ValueKind { return valueKinds.Integer }
func (v Integer) Text() string { return strconv.FormatInt(v.V, 10) }
func (Integer) isValue() {}

// -------- Real --------

type Real struct {
	V float64
}

func (Real) Kind() ValueKind { return valueKinds.Real }
func (Real) isValue() {}

func (v Real) Text() string {
	s := strconv.FormatFloat(v.V, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// -------- Date --------

type Date struct {
	Year  int
	Month int
	Day   int
}

func (Date) Kind() ValueKind { return valueKinds.Date }
func (v Date) Text() string { return fmt.Sprintf("%d.%d.%d", v.Year, v.Month, v.Day) }
func (Date) isValue() {}

// -------- Percent --------

type Percent struct {
	V int32
}

func (Percent) Kind() ValueKind { return valueKinds.Percent }
func (v Percent) Text() string { return strconv.FormatInt(int64(v.V), 10) + "%" }
func (Percent) isValue() {}

// -------- Array --------

// Array is a bracket of bare values. An empty bracket is always an Array.
type Array struct {
	Elems []Value
}

func (*Array) Kind() ValueKind { return valueKinds.Array }
func (*Array) Text() string { return "" }
func (*Array) isValue() {}

// -------- Map --------

// Map is a bracket whose contents were recognized as assignments. Items may
// still contain bare values (Field == nil).
type Map struct {
	Items []Assignment
}

func (*Map) Kind() ValueKind { return valueKinds.Map }
func (*Map) Text() string { return "" }
func (*Map) isValue() {}

// =========================
// Assignments
// =========================

type Operator uint8

const (
	OpNone   Operator = iota // bare value
	OpEq                     // =
	OpNotEq                  // <>
	OpGt                     // >
	OpLt                     // <
	OpGte                    // >=
	OpLte                    // <=
	OpEqEq                   // ==
	OpBang                   // !=
	OpSafeEq                 // ?=
)

var operatorSpellings = map[string]Operator{
	"=":  OpEq,
	"<>": OpNotEq,
	">":  OpGt,
	"<":  OpLt,
	">=": OpGte,
	"<=": OpLte,
	"==": OpEqEq,
	"!=": OpBang,
	"?=": OpSafeEq,
}

var operatorNames = [...]string{
	OpEq:     "=",
	OpNotEq:  "<>",
	OpGt:     ">",
	OpLt:     "<",
	OpGte:    ">=",
	OpLte:    "<=",
	OpEqEq:   "==",
	OpBang:   "!=",
	OpSafeEq: "?=",
}

func (o Operator) String() string {
	if int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return ""
}

// ParseOperator maps an operator spelling to its Operator.
func ParseOperator(s string) (Operator, bool) {
	op, ok := operatorSpellings[s]
	return op, ok
}

type FieldKind uint8

const (
	FieldString FieldKind = iota
	FieldInteger
)

// Field is the left-hand side of an assignment.
type Field struct {
	Kind FieldKind
	Name string
	Int  int64
}

func (f Field) String() string { return f.Name }

// Assignment is `Field Op Value`, or a bare Value when Field is nil.
type Assignment struct {
	Field *Field
	Op    Operator
	Value Value
	Pos   Position
}

func (a Assignment) Key() string {
	if a.Field == nil {
		return ""
	}
	return a.Field.Name
}

// Config is the parse result of one input unit.
type Config struct {
	Assignments []Assignment
}

// =========================
// Safe Access Helpers
// =========================

// Get walks keyed assignments, returning the first match at every level.
func Get(cfg *Config, path ...string) (Value, bool) {
	var cur Value = &Map{Items: cfg.Assignments}
	for _, p := range path {
		if len(p) == 0 {
			continue
		}
		m, ok := cur.(*Map)
		if !ok {
			return nil, false
		}
		found := false
		for _, a := range m.Items {
			if a.Field != nil && a.Field.Name == p {
				cur, found = a.Value, true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return cur, true
}

// ToUntyped converts a value into plain Go data. Maps become ordered
// key/value pair lists because keys repeat.
func ToUntyped(v Value) any {
	switch v := v.(type) {
	case String:
		return v.V
	case Integer:
		return v.V
	case Real:
		return v.V
	case Percent:
		return v.Text()
	case Date:
		return v.Text()
	case *Array:
		out := make([]any, len(v.Elems))
		for i := range v.Elems {
			out[i] = ToUntyped(v.Elems[i])
		}
		return out
	case *Map:
		out := make([]any, 0, len(v.Items))
		for _, a := range v.Items {
			if a.Field == nil {
				out = append(out, ToUntyped(a.Value))
				continue
			}
			out = append(out, map[string]any{a.Field.Name: ToUntyped(a.Value)})
		}
		return out
	default:
		return nil
	}
}

func MustString(v Value) string {
	return v.(String).V
}

func MustInt(v Value) int64 {
	return v.(Integer).V
}
