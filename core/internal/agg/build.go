package agg

import (
	"fmt"

	"github.com/dosco/lookahead/core/internal/pipeline"
	"github.com/dosco/lookahead/core/internal/qcode"
	"github.com/dosco/lookahead/core/internal/sdata"
)

// build appends the stages for the selection sel on typeName to b. Nested
// calls first apply the field's own arguments, then every relation field
// becomes a $lookup over a fresh pipeline and the projection comes last.
func (c *compilerContext) build(sel *qcode.Field,
	typeName string,
	b *pipeline.Builder,
	nested bool,
	isList bool,
	depth int,
) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}

	ti, ok := c.md.Type(typeName)
	if !ok {
		return newError(MissingTypeMetadata, typeName, fieldName(sel), nil)
	}
	if ti.Kind != sdata.KindObject {
		return newError(UnsupportedRelationShape, typeName, fieldName(sel),
			fmt.Errorf("%s types cannot be joined", ti.Kind))
	}

	if nested && sel != nil && len(sel.Args) != 0 {
		err := c.buildMatchAndPagination(b, sel.Args, typeName, sel.Name, isList)
		if err != nil {
			return err
		}
	}

	fields := sel.Fields(typeName)
	order := orderFields(fields)

	for _, key := range order {
		f := fields.Get(key)
		fm := ti.Fields[f.Name]
		if fm == nil || fm.Relation == nil {
			continue
		}

		if err := c.checkRelation(ti, fm, depth); err != nil {
			return err
		}

		nb := pipeline.New(fm.Relation.Type)
		if err := c.build(f, fm.Relation.Type, nb, true, fm.IsList, depth+1); err != nil {
			return err
		}
		b.Lookup(buildLookup(nb, fm, f.Name, key))
	}

	return buildProjection(b, ti, fields, order)
}

func (c *compilerContext) checkRelation(ti *sdata.TypeInfo, fm *sdata.FieldMeta, depth int) error {
	if fm.ListDepth > 1 {
		return newError(UnsupportedRelationShape, ti.Name, fm.Name,
			fmt.Errorf("nested list of depth %d", fm.ListDepth))
	}
	if depth+1 > c.maxDepth {
		return newError(MaxDepthExceeded, ti.Name, fm.Name,
			fmt.Errorf("limit is %d", c.maxDepth))
	}
	return nil
}

func fieldName(sel *qcode.Field) string {
	if sel == nil {
		return ""
	}
	return sel.Name
}
