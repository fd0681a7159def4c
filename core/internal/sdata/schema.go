package sdata

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"
)

// DirectivesSDL declares the schema directives understood by the compiler.
// @relation is the only source of relation metadata. @lookahead is declared
// so that schemas carrying join hints still load, its arguments are ignored.
const DirectivesSDL = `
directive @relation(collection: String) on FIELD_DEFINITION

directive @defaultValue(value: String) on FIELD_DEFINITION

input LookAheadLookup {
	collection: String!
	localField: String!
	foreignField: String!
	preserveNull: Boolean
	conds: String
	sort: String
	limit: Int
}

directive @lookahead(lookup: LookAheadLookup, compose: [String!], expr: String) on FIELD_DEFINITION
`

const (
	relationDirective     = "relation"
	defaultValueDirective = "defaultValue"
	lookaheadDirective    = "lookahead"

	cacheSize = 5000
)

// LoadSchema parses and validates the schema sources together with
// DirectivesSDL.
func LoadSchema(sources ...*ast.Source) (*ast.Schema, error) {
	src := make([]*ast.Source, 0, len(sources)+1)
	src = append(src, &ast.Source{Name: "lookahead_directives.graphql", Input: DirectivesSDL, BuiltIn: true})
	src = append(src, sources...)

	schema, err := gqlparser.LoadSchema(src...)
	if err != nil {
		return nil, fmt.Errorf("sdata: load schema: %w", err)
	}
	return schema, nil
}

// SchemaProvider derives TypeInfo from a parsed GraphQL schema. Derived
// entries are kept in a 2Q cache, the provider is safe for concurrent use.
type SchemaProvider struct {
	schema *ast.Schema
	cache  *lru.TwoQueueCache[string, *TypeInfo]
	log    *zap.Logger
}

func NewSchemaProvider(schema *ast.Schema, log *zap.Logger) (*SchemaProvider, error) {
	if schema == nil {
		return nil, fmt.Errorf("sdata: schema is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	cache, err := lru.New2Q[string, *TypeInfo](cacheSize)
	if err != nil {
		return nil, err
	}
	return &SchemaProvider{schema: schema, cache: cache, log: log}, nil
}

func (p *SchemaProvider) Schema() *ast.Schema {
	return p.schema
}

func (p *SchemaProvider) Type(name string) (*TypeInfo, bool) {
	if ti, ok := p.cache.Get(name); ok {
		return ti, true
	}
	def, ok := p.schema.Types[name]
	if !ok {
		return nil, false
	}
	ti := p.typeInfo(def)
	p.cache.Add(name, ti)
	return ti, true
}

func (p *SchemaProvider) typeInfo(def *ast.Definition) *TypeInfo {
	ti := &TypeInfo{
		Name:   def.Name,
		Kind:   kindOf(def.Kind),
		Fields: make(map[string]*FieldMeta, len(def.Fields)),
	}

	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		ti.Fields[f.Name] = p.fieldMeta(def.Name, f)
	}
	return ti
}

func (p *SchemaProvider) fieldMeta(typeName string, f *ast.FieldDefinition) *FieldMeta {
	depth := listDepth(f.Type)
	fm := &FieldMeta{
		Name:      f.Name,
		Type:      f.Type.Name(),
		IsList:    depth > 0,
		ListDepth: depth,
	}

	if d := f.Directives.ForName(relationDirective); d != nil {
		fm.Relation = &Relation{Type: fm.Type, Collection: fm.Type}
		if v := stringArg(d, "collection"); v != "" {
			fm.Relation.Collection = v
		}
	}

	if d := f.Directives.ForName(defaultValueDirective); d != nil {
		fm.Default = &DefaultValue{DataType: fm.Type}
		if a := d.Arguments.ForName("value"); a != nil && a.Value != nil && a.Value.Kind != ast.NullValue {
			fm.Default.Raw = a.Value.Raw
			fm.Default.HasValue = true
		}
	}

	if f.Directives.ForName(lookaheadDirective) != nil {
		p.log.Debug("ignoring @lookahead join hint, @relation is used for joins",
			zap.String("type", typeName),
			zap.String("field", f.Name))
	}
	return fm
}

func stringArg(d *ast.Directive, name string) string {
	a := d.Arguments.ForName(name)
	if a == nil || a.Value == nil || a.Value.Kind != ast.StringValue {
		return ""
	}
	return a.Value.Raw
}

func listDepth(t *ast.Type) (n int) {
	for ; t != nil && t.Elem != nil; t = t.Elem {
		n++
	}
	return
}

func kindOf(k ast.DefinitionKind) Kind {
	switch k {
	case ast.Interface:
		return KindInterface
	case ast.Union:
		return KindUnion
	case ast.Scalar:
		return KindScalar
	case ast.Enum:
		return KindEnum
	case ast.InputObject:
		return KindInput
	default:
		return KindObject
	}
}
