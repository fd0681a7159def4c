package agg

import (
	"github.com/dosco/lookahead/core/internal/pipeline"
)

// buildMatchAndPagination resolves the arguments of a nested field and
// appends the resulting $match, $sort, $skip and $limit stages. Arguments of
// a singular field are treated as a filter unless they already carry one.
func (c *compilerContext) buildMatchAndPagination(b *pipeline.Builder,
	args map[string]any,
	typeName string,
	field string,
	isList bool,
) error {
	input := args
	if !isList && args != nil && args["filter"] == nil {
		input = map[string]any{"filter": args}
	}

	p, err := c.resolve(c.ctx, Params{
		Input:            input,
		Model:            typeName,
		AllowDefaultSort: true,
	})
	if err != nil {
		return newError(ResolverFailure, typeName, field, err)
	}

	appendPagination(b, p)
	return nil
}

func appendPagination(b *pipeline.Builder, p Pagination) {
	if len(p.Filter) != 0 {
		b.Match(p.Filter)
	}
	if len(p.Sort) != 0 {
		b.Sort(p.Sort)
	}
	if p.Skip != 0 {
		b.Skip(p.Skip)
	}
	if p.Limit != 0 {
		b.Limit(p.Limit)
	}
}
