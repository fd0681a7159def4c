// Package qcode turns a GraphQL operation into the normalized selection
// tree consumed by the aggregation compiler.
package qcode

// Field is one requested field occurrence and its nested selection.
// FieldsByTypeName groups the sub-selection by the type it was requested on,
// so fragments on different member types of an abstract type stay apart.
type Field struct {
	// Underlying schema field name
	Name string

	// Response key, equal to Name when the field was not aliased
	Alias string

	// Named return type of the field, list wrappers removed
	Type string

	IsList bool

	Args map[string]any

	FieldsByTypeName map[string]Fields
}

// Key returns the alias, falling back to the field name.
func (f *Field) Key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// Fields returns the sub-selection requested on typeName. It is safe to call
// on a nil field.
func (f *Field) Fields(typeName string) Fields {
	if f == nil {
		return nil
	}
	return f.FieldsByTypeName[typeName]
}

// Fields is a selection in request order.
type Fields []*Field

// Get returns the field stored under the response key.
func (fs Fields) Get(key string) *Field {
	for _, f := range fs {
		if f.Key() == key {
			return f
		}
	}
	return nil
}

// add appends f, merging it into an existing field with the same response key.
func (fs Fields) add(f *Field) Fields {
	ex := fs.Get(f.Key())
	if ex == nil {
		return append(fs, f)
	}
	if len(ex.Args) == 0 {
		ex.Args = f.Args
	}
	if len(f.FieldsByTypeName) != 0 && ex.FieldsByTypeName == nil {
		ex.FieldsByTypeName = make(map[string]Fields, len(f.FieldsByTypeName))
	}
	for typeName, sub := range f.FieldsByTypeName {
		for _, sf := range sub {
			ex.FieldsByTypeName[typeName] = ex.FieldsByTypeName[typeName].add(sf)
		}
	}
	return fs
}
