// Package agg compiles a normalized GraphQL selection tree into a MongoDB
// aggregation pipeline.
package agg

import (
	"context"
	"errors"
	"time"

	"github.com/dosco/lookahead/core/internal/pipeline"
	"github.com/dosco/lookahead/core/internal/qcode"
	"github.com/dosco/lookahead/core/internal/sdata"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// DefaultMaxDepth bounds relation nesting when Config.MaxDepth is not set.
const DefaultMaxDepth = 16

// Params is the input handed to a ResolverFn.
type Params struct {
	Input            map[string]any
	Model            string
	AllowDefaultSort bool
}

// Pagination is the resolved filter, sort and window of one field.
type Pagination struct {
	Filter bson.M
	Sort   bson.D
	Skip   int64
	Limit  int64
}

// ResolverFn turns raw field arguments into concrete filter and pagination
// documents.
type ResolverFn func(ctx context.Context, p Params) (Pagination, error)

// RootArgs are applied to the root pipeline as given, they never go through
// the resolver.
type RootArgs struct {
	Filters bson.M
	Sort    bson.D
	Skip    int64
	Limit   int64
}

type Query struct {
	Name     string
	Pipeline *pipeline.Builder
	Stages   []bson.D
}

type Config struct {
	MaxDepth int
}

type Option func(*Compiler)

func WithLogger(log *zap.Logger) Option {
	return func(co *Compiler) {
		if log != nil {
			co.log = log
		}
	}
}

// Compiler holds only read-only state and may be shared between goroutines.
// Every compile gets its own compilerContext and builders.
type Compiler struct {
	md       sdata.Provider
	resolve  ResolverFn
	maxDepth int
	log      *zap.Logger
}

type compilerContext struct {
	ctx context.Context
	*Compiler
}

func NewCompiler(md sdata.Provider, resolve ResolverFn, conf Config, opts ...Option) (*Compiler, error) {
	if md == nil {
		return nil, errors.New("agg: metadata provider is required")
	}
	if resolve == nil {
		return nil, errors.New("agg: filter and pagination resolver is required")
	}

	co := &Compiler{
		md:       md,
		resolve:  resolve,
		maxDepth: conf.MaxDepth,
		log:      zap.NewNop(),
	}
	if co.maxDepth <= 0 {
		co.maxDepth = DefaultMaxDepth
	}
	for _, opt := range opts {
		opt(co)
	}
	return co, nil
}

// ConstructQuery builds the pipeline for sel requested on typeName. Root
// filters, sort, skip and limit come first, followed by the lookups and the
// projection of the root type.
func (co *Compiler) ConstructQuery(ctx context.Context,
	typeName string,
	sel *qcode.Field,
	args RootArgs,
) (*Query, error) {
	start := time.Now()

	b := pipeline.New(typeName)
	appendPagination(b, Pagination{
		Filter: args.Filters,
		Sort:   args.Sort,
		Skip:   args.Skip,
		Limit:  args.Limit,
	})

	c := &compilerContext{ctx: ctx, Compiler: co}
	if err := c.build(sel, typeName, b, false, false, 0); err != nil {
		co.log.Debug("aggregation compile failed",
			zap.String("type", typeName),
			zap.Error(err))
		return nil, err
	}

	q := &Query{
		Name:     typeName,
		Pipeline: b,
		Stages:   b.Pipeline(),
	}

	co.log.Debug("aggregation compiled",
		zap.String("type", typeName),
		zap.Int("stages", len(q.Stages)),
		zap.Duration("took", time.Since(start)))
	return q, nil
}
