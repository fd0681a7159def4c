package qcode

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Parse validates query against schema and returns the root fields of the
// selected operation. An empty opName selects the only operation.
func Parse(schema *ast.Schema, query, opName string, vars map[string]any) (Fields, error) {
	doc, err := LoadDocument(schema, query)
	if err != nil {
		return nil, err
	}
	op, err := Operation(doc, opName)
	if err != nil {
		return nil, err
	}
	return ParseOperation(schema, op, vars)
}

// LoadDocument parses and validates query against schema
func LoadDocument(schema *ast.Schema, query string) (*ast.QueryDocument, error) {
	doc, errs := gqlparser.LoadQuery(schema, query)
	if len(errs) != 0 {
		return nil, fmt.Errorf("qcode: %w", errs)
	}
	return doc, nil
}

// Operation selects the operation named opName from doc
func Operation(doc *ast.QueryDocument, opName string) (*ast.OperationDefinition, error) {
	op := doc.Operations.ForName(opName)
	if op == nil {
		if opName == "" {
			return nil, fmt.Errorf("qcode: operation name required when the document has %d operations", len(doc.Operations))
		}
		return nil, fmt.Errorf("qcode: operation '%s' not found", opName)
	}
	return op, nil
}

// ParseOperation returns the root fields of an already validated operation.
func ParseOperation(schema *ast.Schema, op *ast.OperationDefinition, vars map[string]any) (Fields, error) {
	if op.Operation != ast.Query {
		return nil, fmt.Errorf("qcode: %s operations are not supported", op.Operation)
	}
	if schema.Query == nil {
		return nil, fmt.Errorf("qcode: schema has no query type")
	}

	roots := make(map[string]Fields)
	collect(op.SelectionSet, schema.Query.Name, vars, roots)
	return roots[schema.Query.Name], nil
}

func collect(ss ast.SelectionSet, onType string, vars map[string]any, out map[string]Fields) {
	for _, sel := range ss {
		switch sel := sel.(type) {
		case *ast.Field:
			if strings.HasPrefix(sel.Name, "__") || !include(sel.Directives, vars) {
				continue
			}
			out[onType] = out[onType].add(newField(sel, vars))

		case *ast.InlineFragment:
			if !include(sel.Directives, vars) {
				continue
			}
			collect(sel.SelectionSet, typeCondition(sel.TypeCondition, onType), vars, out)

		case *ast.FragmentSpread:
			if sel.Definition == nil || !include(sel.Directives, vars) {
				continue
			}
			collect(sel.Definition.SelectionSet, typeCondition(sel.Definition.TypeCondition, onType), vars, out)
		}
	}
}

func newField(f *ast.Field, vars map[string]any) *Field {
	fd := &Field{
		Name:  f.Name,
		Alias: f.Alias,
	}
	if fd.Alias == "" {
		fd.Alias = f.Name
	}

	if f.Definition != nil {
		fd.Type = f.Definition.Type.Name()
		fd.IsList = f.Definition.Type.Elem != nil
		fd.Args = f.ArgumentMap(vars)
	} else {
		fd.Args = argMap(f.Arguments, vars)
	}

	if len(f.SelectionSet) != 0 {
		fd.FieldsByTypeName = make(map[string]Fields)
		collect(f.SelectionSet, fd.Type, vars, fd.FieldsByTypeName)
	}
	return fd
}

func typeCondition(cond, onType string) string {
	if cond == "" {
		return onType
	}
	return cond
}

func include(dirs ast.DirectiveList, vars map[string]any) bool {
	if d := dirs.ForName("skip"); d != nil && boolArg(d, vars) {
		return false
	}
	if d := dirs.ForName("include"); d != nil && !boolArg(d, vars) {
		return false
	}
	return true
}

func boolArg(d *ast.Directive, vars map[string]any) bool {
	a := d.Arguments.ForName("if")
	if a == nil || a.Value == nil {
		return false
	}
	v, err := a.Value.Value(vars)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

func argMap(args ast.ArgumentList, vars map[string]any) map[string]any {
	m := make(map[string]any, len(args))
	for _, a := range args {
		if a.Value == nil {
			continue
		}
		if v, err := a.Value.Value(vars); err == nil {
			m[a.Name] = v
		}
	}
	return m
}
