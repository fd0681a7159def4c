package pipeline

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// NameLimit is the maximum length of a pipeline name.
const NameLimit = 30

// Builder collects the stages of one aggregation pipeline. A builder is owned
// by a single compile call and is not safe for concurrent use.
type Builder struct {
	name   string
	stages []Stage
}

// New returns an empty builder named after typeName, truncated to NameLimit
// characters.
func New(typeName string) *Builder {
	return &Builder{name: truncate(typeName, NameLimit)}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (b *Builder) Name() string { return b.name }

func (b *Builder) Len() int { return len(b.stages) }

func (b *Builder) Match(filter bson.M) *Builder {
	return b.add(Match{Filter: filter})
}

func (b *Builder) Sort(spec bson.D) *Builder {
	return b.add(Sort{Spec: spec})
}

func (b *Builder) Skip(n int64) *Builder {
	return b.add(Skip(n))
}

func (b *Builder) Limit(n int64) *Builder {
	return b.add(Limit(n))
}

func (b *Builder) Lookup(j JoinSpec) *Builder {
	return b.add(Lookup{Join: j})
}

func (b *Builder) Project(p Projection) *Builder {
	return b.add(Project{Fields: p})
}

func (b *Builder) add(s Stage) *Builder {
	b.stages = append(b.stages, s)
	return b
}

// Stages returns a copy of the typed stages in order.
func (b *Builder) Stages() []Stage {
	out := make([]Stage, len(b.stages))
	copy(out, b.stages)
	return out
}

// Pipeline materializes the stages as BSON documents. An empty builder
// yields an empty, non-nil slice.
func (b *Builder) Pipeline() []bson.D {
	out := make([]bson.D, 0, len(b.stages))
	for _, s := range b.stages {
		out = append(out, s.BSON())
	}
	return out
}
