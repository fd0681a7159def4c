package core

import (
	"github.com/dosco/lookahead/core/internal/agg"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// OperationAggregate is the only operation a compiled Query describes
const OperationAggregate = "aggregate"

// Query is a compiled root field ready to run with Aggregate on its
// collection.
type Query struct {
	*agg.Query

	// Response key of the root field
	FieldName string

	Collection string

	// Singular queries return at most one document
	Singular bool
}

// DSL renders the query as relaxed extended JSON in the form read by the
// mongodriver package.
func (q *Query) DSL() ([]byte, error) {
	return bson.MarshalExtJSON(q.document(), false, false)
}

func (q *Query) document() bson.D {
	stages := bson.A{}
	for _, s := range q.Stages {
		stages = append(stages, s)
	}
	return bson.D{
		{Key: "operation", Value: OperationAggregate},
		{Key: "collection", Value: q.Collection},
		{Key: "field_name", Value: q.FieldName},
		{Key: "singular", Value: q.Singular},
		{Key: "pipeline", Value: stages},
	}
}
