package agg

import (
	"github.com/dosco/lookahead/core/internal/pipeline"
	"github.com/dosco/lookahead/core/internal/sdata"
)

const (
	typeIDSuffix  = ".typeId"
	joinVarSuffix = "Id"
)

// buildLookup returns the join for a relation field. A nested pipeline that
// only projects is dropped in favour of a plain equality join.
func buildLookup(nested *pipeline.Builder,
	fm *sdata.FieldMeta,
	fieldName string,
	alias string,
) pipeline.JoinSpec {
	as := alias
	if as == "" {
		as = fieldName
	}

	from := fm.Relation.Collection
	if from == "" {
		from = fm.Relation.Type
	}

	if !hasWork(nested) {
		return pipeline.EqualityJoin{
			From:         from,
			As:           as,
			LocalField:   fieldName + typeIDSuffix,
			ForeignField: idField,
		}
	}

	return pipeline.ConditionalJoin{
		From: from,
		As:   as,
		Let: []pipeline.Variable{{
			Name:         fieldName + joinVarSuffix,
			Source:       fieldName + typeIDSuffix,
			ForeignField: idField,
			IsList:       fm.IsList,
		}},
		Pipeline: nested,
	}
}

// hasWork reports whether b filters, pages or joins anything.
func hasWork(b *pipeline.Builder) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Stages() {
		if s.Kind() != pipeline.KindProject {
			return true
		}
	}
	return false
}
