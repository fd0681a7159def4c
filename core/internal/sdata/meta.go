// Package sdata describes the per-type field metadata the compiler reads:
// relations, default values and list-ness.
package sdata

type Kind int

const (
	KindObject Kind = iota
	KindInterface
	KindUnion
	KindScalar
	KindEnum
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindInterface:
		return "interface"
	case KindUnion:
		return "union"
	case KindScalar:
		return "scalar"
	case KindEnum:
		return "enum"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// TypeInfo holds the field metadata of one named type. It is read-only once
// returned by a Provider.
type TypeInfo struct {
	Name   string
	Kind   Kind
	Fields map[string]*FieldMeta
}

// FieldMeta is the metadata of one underlying field of a type.
type FieldMeta struct {
	Name string

	// Named data type of the field, list wrappers removed
	Type string

	IsList bool

	// Number of list wrappers around the named type, [[T]] is 2
	ListDepth int

	Relation *Relation
	Default  *DefaultValue
}

// Relation marks a field whose value is joined from another collection.
type Relation struct {
	// Target type name
	Type string

	// Collection to join from, defaults to the target type name
	Collection string
}

// DefaultValue is the literal used when a stored field is null or missing.
type DefaultValue struct {
	DataType string
	Raw      string
	HasValue bool
}

type Provider interface {
	Type(name string) (*TypeInfo, bool)
}

// MapProvider is a static Provider keyed by type name.
type MapProvider map[string]*TypeInfo

func (m MapProvider) Type(name string) (*TypeInfo, bool) {
	ti, ok := m[name]
	return ti, ok
}

// NewTypeInfo returns an object TypeInfo holding the given fields.
func NewTypeInfo(name string, fields ...*FieldMeta) *TypeInfo {
	ti := &TypeInfo{
		Name:   name,
		Kind:   KindObject,
		Fields: make(map[string]*FieldMeta, len(fields)),
	}
	for _, f := range fields {
		ti.Fields[f.Name] = f
	}
	return ti
}
