package sdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

const testSchema = `
type Chapter {
	id: ID!
	title: String
}

type Topic {
	id: ID!
	title: String
	status: String
	tags: [String]
	published: Boolean @defaultValue(value: "false")
	views: Int @defaultValue
	chapter: Chapter @relation
	chapters: [Chapter!]! @relation(collection: "chapters")
	grid: [[Chapter]] @relation
	legacy: [Chapter] @lookahead(lookup: { collection: "chapters", localField: "id", foreignField: "_id" })
	subject: Subject @relation
}

type Video {
	id: ID!
}

union Subject = Chapter | Video

type Query {
	topics: [Topic]
}
`

func newTestProvider(t *testing.T) *SchemaProvider {
	t.Helper()
	schema, err := LoadSchema(&ast.Source{Name: "schema.graphql", Input: testSchema})
	require.NoError(t, err)

	p, err := NewSchemaProvider(schema, nil)
	require.NoError(t, err)
	return p
}

func TestSchemaProviderFieldMeta(t *testing.T) {
	p := newTestProvider(t)

	ti, ok := p.Type("Topic")
	require.True(t, ok)
	assert.Equal(t, "Topic", ti.Name)
	assert.Equal(t, KindObject, ti.Kind)

	tests := []struct {
		field string
		want  FieldMeta
	}{
		{"id", FieldMeta{Name: "id", Type: "ID"}},
		{"tags", FieldMeta{Name: "tags", Type: "String", IsList: true, ListDepth: 1}},
		{"published", FieldMeta{
			Name:    "published",
			Type:    "Boolean",
			Default: &DefaultValue{DataType: "Boolean", Raw: "false", HasValue: true},
		}},
		{"views", FieldMeta{
			Name:    "views",
			Type:    "Int",
			Default: &DefaultValue{DataType: "Int"},
		}},
		{"chapter", FieldMeta{
			Name:     "chapter",
			Type:     "Chapter",
			Relation: &Relation{Type: "Chapter", Collection: "Chapter"},
		}},
		{"chapters", FieldMeta{
			Name:      "chapters",
			Type:      "Chapter",
			IsList:    true,
			ListDepth: 1,
			Relation:  &Relation{Type: "Chapter", Collection: "chapters"},
		}},
		{"grid", FieldMeta{
			Name:      "grid",
			Type:      "Chapter",
			IsList:    true,
			ListDepth: 2,
			Relation:  &Relation{Type: "Chapter", Collection: "Chapter"},
		}},
		{"legacy", FieldMeta{Name: "legacy", Type: "Chapter", IsList: true, ListDepth: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			fm, ok := ti.Fields[tt.field]
			require.True(t, ok)
			assert.Equal(t, tt.want, *fm)
		})
	}
}

func TestSchemaProviderKinds(t *testing.T) {
	p := newTestProvider(t)

	ti, ok := p.Type("Subject")
	require.True(t, ok)
	assert.Equal(t, KindUnion, ti.Kind)

	_, ok = p.Type("Missing")
	assert.False(t, ok)
}

func TestSchemaProviderCaches(t *testing.T) {
	p := newTestProvider(t)

	a, ok := p.Type("Chapter")
	require.True(t, ok)
	b, ok := p.Type("Chapter")
	require.True(t, ok)
	assert.Same(t, a, b)
}

func TestLoadSchemaError(t *testing.T) {
	_, err := LoadSchema(&ast.Source{Name: "bad.graphql", Input: `type Topic { chapter: Missing }`})
	assert.Error(t, err)
}

func TestMapProvider(t *testing.T) {
	p := MapProvider{
		"Topic": NewTypeInfo("Topic", &FieldMeta{Name: "id"}, &FieldMeta{Name: "title"}),
	}

	ti, ok := p.Type("Topic")
	require.True(t, ok)
	assert.Len(t, ti.Fields, 2)
	assert.Equal(t, KindObject, ti.Kind)

	_, ok = p.Type("Chapter")
	assert.False(t, ok)
}
