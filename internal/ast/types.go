package ast

import "strings"

// BaseKind identifies the base of a type term. For primitive types the
// base is the type itself; for constructed types it names the
// constructor (array, record, function, ...).
type BaseKind int

const (
	BaseUnknown BaseKind = iota
	BaseVoid
	BaseInt
	BaseBool
	BaseClock
	BaseScalar
	BaseLocation
	BaseChannel
	BaseTemplate
	BaseInstance
	BaseFunction
	BaseArray
	BaseRecord
	BaseProcess
	BaseNamed
	BaseInvariant
	BaseInvariantWR // invariant that may carry rate equalities
	BaseGuard
	BaseDiff
	BaseConstraint
	BaseCost
	BaseRate
)

var baseNames = map[BaseKind]string{
	BaseUnknown:     "unknown",
	BaseVoid:        "void",
	BaseInt:         "int",
	BaseBool:        "bool",
	BaseClock:       "clock",
	BaseScalar:      "scalar",
	BaseLocation:    "location",
	BaseChannel:     "chan",
	BaseTemplate:    "template",
	BaseInstance:    "instance",
	BaseFunction:    "function",
	BaseArray:       "array",
	BaseRecord:      "struct",
	BaseProcess:     "process",
	BaseNamed:       "named",
	BaseInvariant:   "invariant",
	BaseInvariantWR: "invariant+r",
	BaseGuard:       "guard",
	BaseDiff:        "diff",
	BaseConstraint:  "constraint",
	BaseCost:        "cost",
	BaseRate:        "rate",
}

func (b BaseKind) String() string {
	if name, ok := baseNames[b]; ok {
		return name
	}
	return "invalid"
}

// Prefix is a bit-set of type modifiers.
type Prefix uint32

const (
	PrefixUrgent Prefix = 1 << iota
	PrefixCommitted
	PrefixConstant
	PrefixBroadcast
	PrefixReference
	PrefixMeta
	PrefixWinning
	PrefixLosing
)

var prefixNames = []struct {
	prefix Prefix
	name   string
}{
	{PrefixUrgent, "urgent"},
	{PrefixCommitted, "committed"},
	{PrefixConstant, "const"},
	{PrefixBroadcast, "broadcast"},
	{PrefixReference, "&"},
	{PrefixMeta, "meta"},
	{PrefixWinning, "winning"},
	{PrefixLosing, "losing"},
}

// scalarIdent is the nominal identity of a scalar-set type. Two
// separately declared scalar sets of the same size remain distinct.
type scalarIdent struct{ _ byte }

// Type is an immutable, shared type term. Derived terms (prefix
// changes) are new values; the nominal identity of records and scalar
// sets survives derivation.
type Type struct {
	base     BaseKind
	prefixes Prefix
	lower    *Expression // range lower bound (int, scalar)
	upper    *Expression // range upper bound (int, scalar)
	sub      *Type       // element, return or underlying type
	size     *Type       // array size type (int or scalar range)
	frame    *Frame      // record fields or function/template parameters
	ident    *scalarIdent
}

// Primitive type singletons. Constructed types are created with the
// factory functions below.
var (
	UnknownType     = &Type{base: BaseUnknown}
	VoidType        = &Type{base: BaseVoid}
	IntType         = &Type{base: BaseInt}
	BoolType        = &Type{base: BaseBool}
	ClockType       = &Type{base: BaseClock}
	LocationType    = &Type{base: BaseLocation}
	ChannelType     = &Type{base: BaseChannel}
	InstanceType    = &Type{base: BaseInstance}
	InvariantType   = &Type{base: BaseInvariant}
	InvariantWRType = &Type{base: BaseInvariantWR}
	GuardType       = &Type{base: BaseGuard}
	DiffType        = &Type{base: BaseDiff}
	ConstraintType  = &Type{base: BaseConstraint}
	CostType        = &Type{base: BaseCost}
	RateType        = &Type{base: BaseRate}
)

// NewInteger creates a bounded integer type. Both bounds may be nil
// for an unbounded integer.
func NewInteger(lower, upper *Expression) *Type {
	return &Type{base: BaseInt, lower: lower, upper: upper}
}

// NewScalarSet creates a fresh scalar-set type with the given bounds.
// Each call mints a new nominal identity.
func NewScalarSet(lower, upper *Expression) *Type {
	return &Type{base: BaseScalar, lower: lower, upper: upper, ident: &scalarIdent{}}
}

// NewRecord creates a record type over the given field frame. Record
// identity is frame identity.
func NewRecord(fields *Frame) *Type {
	return &Type{base: BaseRecord, frame: fields}
}

// NewFunction creates a function type with a parameter frame and a
// return type.
func NewFunction(parameters *Frame, ret *Type) *Type {
	return &Type{base: BaseFunction, frame: parameters, sub: ret}
}

// NewArray creates an array type. The size type must be a bounded
// integer or a scalar set.
func NewArray(elem, size *Type) *Type {
	return &Type{base: BaseArray, sub: elem, size: size}
}

// NewNamed creates a named type aliasing the given underlying type.
func NewNamed(underlying *Type) *Type {
	return &Type{base: BaseNamed, sub: underlying}
}

// NewTemplate creates a template type with the given parameter frame.
func NewTemplate(parameters *Frame) *Type {
	return &Type{base: BaseTemplate, frame: parameters}
}

// NewProcess creates a process type with the given parameter frame.
func NewProcess(parameters *Frame) *Type {
	return &Type{base: BaseProcess, frame: parameters}
}

// Base returns the base kind of the type. The unknown type has base
// BaseUnknown; a nil type behaves like the unknown type.
func (t *Type) Base() BaseKind {
	if t == nil {
		return BaseUnknown
	}
	return t.base
}

// HasPrefix returns true if the type carries the given prefix.
func (t *Type) HasPrefix(p Prefix) bool {
	return t != nil && t.prefixes&p != 0
}

// SetPrefix returns a new term with the prefix set or cleared. The
// nominal identity of records and scalar sets is preserved.
func (t *Type) SetPrefix(on bool, p Prefix) *Type {
	if t == nil {
		t = UnknownType
	}
	dup := *t
	if on {
		dup.prefixes |= p
	} else {
		dup.prefixes &^= p
	}
	return &dup
}

// Sub returns the element type of an array, the return type of a
// function or the underlying type of a named type.
func (t *Type) Sub() *Type {
	if t == nil {
		return nil
	}
	return t.sub
}

// ArraySize returns the size type of an array.
func (t *Type) ArraySize() *Type {
	if t == nil {
		return nil
	}
	return t.size
}

// RecordFields returns the field frame of a record type.
func (t *Type) RecordFields() *Frame {
	if t == nil {
		return nil
	}
	return t.frame
}

// Parameters returns the parameter frame of a function, template or
// process type.
func (t *Type) Parameters() *Frame {
	if t == nil {
		return nil
	}
	return t.frame
}

// Frame is the polymorphic accessor for RecordFields and Parameters.
func (t *Type) Frame() *Frame {
	if t == nil {
		return nil
	}
	return t.frame
}

// RangeBounds returns the bound expressions of an integer or scalar
// type. Unbounded types return nil expressions.
func (t *Type) RangeBounds() (lower, upper *Expression) {
	if t == nil {
		return nil, nil
	}
	return t.lower, t.upper
}

// Predicates over the classification lattice. Value = int or bool;
// each is-X predicate includes everything below it.

func (t *Type) IsInteger() bool { return t.Base() == BaseInt }

func (t *Type) IsValue() bool {
	b := t.Base()
	return b == BaseInt || b == BaseBool
}

func (t *Type) IsScalar() bool {
	return t.Base() == BaseScalar || t.IsInteger()
}

func (t *Type) IsClock() bool  { return t.Base() == BaseClock }
func (t *Type) IsRecord() bool { return t.Base() == BaseRecord }
func (t *Type) IsArray() bool  { return t.Base() == BaseArray }
func (t *Type) IsDiff() bool   { return t.Base() == BaseDiff }
func (t *Type) IsVoid() bool   { return t.Base() == BaseVoid }

func (t *Type) IsInvariant() bool {
	return t.Base() == BaseInvariant || t.IsValue()
}

// IsInvariantWR returns true for invariants that may carry rate
// equalities, i.e. invariants plus the invariant+rate base.
func (t *Type) IsInvariantWR() bool {
	return t.Base() == BaseInvariantWR || t.IsInvariant()
}

func (t *Type) IsGuard() bool {
	return t.Base() == BaseGuard || t.IsInvariant()
}

func (t *Type) IsConstraint() bool {
	return t.Base() == BaseConstraint || t.IsGuard()
}

// ScalarEqual reports whether two scalar-set types denote the same
// declared scalar set, ignoring prefixes.
func (t *Type) ScalarEqual(other *Type) bool {
	return t.Base() == BaseScalar && other.Base() == BaseScalar &&
		t.ident == other.ident
}

// Equal compares two type terms. Records compare by field-frame
// identity and scalar sets by their minted identity; everything else
// compares structurally, with range bounds compared syntactically.
func (t *Type) Equal(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return t.Base() == other.Base()
	}
	if t.base != other.base || t.prefixes != other.prefixes {
		return false
	}
	switch t.base {
	case BaseRecord:
		return t.frame == other.frame
	case BaseScalar:
		return t.ident == other.ident
	case BaseInt:
		return t.lower.Equal(other.lower) && t.upper.Equal(other.upper)
	case BaseArray:
		return t.size.Equal(other.size) && t.sub.Equal(other.sub)
	case BaseFunction:
		return t.frame == other.frame && t.sub.Equal(other.sub)
	case BaseNamed:
		return t.sub.Equal(other.sub)
	case BaseTemplate, BaseProcess:
		return t.frame == other.frame
	default:
		return true
	}
}

// String renders the type for diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "unknown"
	}
	var sb strings.Builder
	for _, pn := range prefixNames {
		if t.prefixes&pn.prefix != 0 && pn.prefix != PrefixReference {
			sb.WriteString(pn.name)
			sb.WriteByte(' ')
		}
	}
	switch t.base {
	case BaseInt:
		if t.lower != nil {
			sb.WriteString("int[")
			sb.WriteString(t.lower.String())
			sb.WriteByte(',')
			sb.WriteString(t.upper.String())
			sb.WriteByte(']')
		} else {
			sb.WriteString("int")
		}
	case BaseScalar:
		sb.WriteString("scalar")
		if t.upper != nil {
			sb.WriteByte('[')
			sb.WriteString(t.upper.String())
			sb.WriteByte(']')
		}
	case BaseArray:
		sb.WriteString(t.sub.String())
		sb.WriteString("[]")
	case BaseNamed:
		sb.WriteString(t.sub.String())
	default:
		sb.WriteString(t.base.String())
	}
	if t.prefixes&PrefixReference != 0 {
		sb.WriteString(" &")
	}
	return sb.String()
}
