// Package core provides an API to compile GraphQL queries into MongoDB
// aggregation pipelines. Relations between types are declared in the schema
// with the @relation directive and become $lookup stages, requested fields
// become the final $project stage of each pipeline.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/dosco/lookahead/core/internal/agg"
	"github.com/dosco/lookahead/core/internal/qcode"
	"github.com/dosco/lookahead/core/internal/sdata"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine holds the parsed schema, the derived type metadata and the
// compiler. It is safe for concurrent use.
type Engine struct {
	conf    *Config
	schema  *ast.Schema
	md      *sdata.SchemaProvider
	co      *agg.Compiler
	resolve ResolverFn
	docs    docCache
	log     *zap.Logger
}

type Option func(*Engine) error

// OptionSetLogger sets the logger used by the engine and its compiler
func OptionSetLogger(log *zap.Logger) Option {
	return func(e *Engine) error {
		if log == nil {
			return errors.New("logger is nil")
		}
		e.log = log
		return nil
	}
}

// NewEngine creates an Engine for schema. The resolver turns field
// arguments into filters and pagination, use NewArgsResolver for the
// default behaviour.
func NewEngine(conf *Config, schema *ast.Schema, resolve ResolverFn, options ...Option) (*Engine, error) {
	if conf == nil {
		conf = &Config{}
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if schema == nil {
		return nil, errors.New("schema is required")
	}
	if resolve == nil {
		return nil, errors.New("filter and pagination resolver is required")
	}

	e := &Engine{
		conf:    conf,
		schema:  schema,
		resolve: resolve,
		log:     zap.NewNop(),
	}

	for _, op := range options {
		if err := op(e); err != nil {
			return nil, err
		}
	}

	if err := e.initCache(); err != nil {
		return nil, err
	}

	md, err := sdata.NewSchemaProvider(schema, e.log)
	if err != nil {
		return nil, err
	}
	e.md = md

	e.co, err = agg.NewCompiler(md, agg.ResolverFn(resolve), agg.Config{
		MaxDepth: conf.MaxDepth,
	}, agg.WithLogger(e.log))
	if err != nil {
		return nil, err
	}
	return e, nil
}

// LoadSchema parses GraphQL SDL sources together with the directives the
// compiler understands.
func LoadSchema(sources ...*ast.Source) (*ast.Schema, error) {
	return sdata.LoadSchema(sources...)
}

// Schema returns the schema the engine was created with
func (e *Engine) Schema() *ast.Schema {
	return e.schema
}

// ConstructQuery compiles sel on typeName. Root arguments are applied to the
// pipeline as given and are not passed through the resolver.
func (e *Engine) ConstructQuery(ctx context.Context,
	typeName string,
	sel *Field,
	args RootArgs,
) (*Query, error) {
	q, err := e.co.ConstructQuery(ctx, typeName, sel, args)
	if err != nil {
		return nil, err
	}

	res := &Query{
		Query:      q,
		Collection: typeName,
	}
	if sel != nil {
		res.FieldName = sel.Key()
		res.Singular = !sel.IsList
	}
	return res, nil
}

// Compile parses a GraphQL query and returns one compiled Query for each of
// its root fields, in request order. Root fields are compiled concurrently.
func (e *Engine) Compile(ctx context.Context,
	query string,
	opName string,
	vars map[string]any,
) ([]*Query, error) {
	doc, err := e.document(query)
	if err != nil {
		return nil, err
	}
	op, err := qcode.Operation(doc, opName)
	if err != nil {
		return nil, err
	}
	fields, err := qcode.ParseOperation(e.schema, op, vars)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.New("query selects no fields")
	}

	res := make([]*Query, len(fields))
	g, ctx := errgroup.WithContext(ctx)

	for i, f := range fields {
		i, f := i, f
		g.Go(func() error {
			q, err := e.compileRoot(ctx, f)
			if err != nil {
				return err
			}
			res[i] = q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// document returns the validated document for query, parsing it on a
// cache miss
func (e *Engine) document(query string) (*ast.QueryDocument, error) {
	if doc, ok := e.docs.Get(query); ok {
		return doc, nil
	}
	doc, err := qcode.LoadDocument(e.schema, query)
	if err != nil {
		return nil, err
	}
	e.docs.Set(query, doc)
	return doc, nil
}

// compileRoot resolves the arguments of a root field and compiles it. A
// singular root field returns at most one document.
func (e *Engine) compileRoot(ctx context.Context, f *Field) (*Query, error) {
	queryType := e.schema.Query.Name

	input := f.Args
	if !f.IsList && len(f.Args) != 0 && f.Args[argFilter] == nil {
		input = map[string]any{argFilter: f.Args}
	}

	pg, err := e.resolve(ctx, Params{
		Input:            input,
		Model:            f.Type,
		AllowDefaultSort: f.IsList,
	})
	if err != nil {
		return nil, &Error{Kind: ResolverFailure, Type: queryType, Field: f.Name, Err: err}
	}

	args := RootArgs{
		Filters: pg.Filter,
		Sort:    pg.Sort,
		Skip:    pg.Skip,
		Limit:   pg.Limit,
	}
	if !f.IsList {
		args.Limit = 1
	}

	q, err := e.ConstructQuery(ctx, f.Type, f, args)
	if err != nil {
		return nil, err
	}
	q.Collection = e.collection(queryType, f)

	e.log.Debug("root field compiled",
		zap.String("field", q.FieldName),
		zap.String("collection", q.Collection),
		zap.Int("stages", len(q.Stages)))
	return q, nil
}

// collection returns the collection a root field reads from. It defaults
// to the type name and can be set with @relation(collection:) on the root
// field.
func (e *Engine) collection(queryType string, f *Field) string {
	if ti, ok := e.md.Type(queryType); ok {
		if fm := ti.Fields[f.Name]; fm != nil && fm.Relation != nil && fm.Relation.Collection != "" {
			return fm.Relation.Collection
		}
	}
	return f.Type
}
