package mongodriver

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Operation types for the query DSL
const (
	OpAggregate = "aggregate"
)

// QueryDSL is a compiled query in its extended JSON form. Eg.
//
//	{"operation":"aggregate","collection":"topics","field_name":"topics",
//	 "singular":false,"pipeline":[{"$match":{"status":"published"}}]}
type QueryDSL struct {
	Operation  string   `bson:"operation"`
	Collection string   `bson:"collection"`
	FieldName  string   `bson:"field_name"`
	Singular   bool     `bson:"singular"`
	Pipeline   []bson.D `bson:"pipeline"`
}

// ParseQuery parses a query DSL document
func ParseQuery(query string) (*QueryDSL, error) {
	var q QueryDSL
	if err := bson.UnmarshalExtJSON([]byte(query), false, &q); err != nil {
		return nil, fmt.Errorf("mongodriver: invalid query: %w", err)
	}
	if q.Operation == "" {
		return nil, errors.New("mongodriver: query operation is required")
	}
	return &q, nil
}

// Validate checks that q can be executed
func (q *QueryDSL) Validate() error {
	if q.Operation != OpAggregate {
		return fmt.Errorf("mongodriver: unsupported query operation: %s", q.Operation)
	}
	if q.Collection == "" {
		return errors.New("mongodriver: aggregate requires collection")
	}
	if q.FieldName == "" {
		return errors.New("mongodriver: aggregate requires field_name")
	}
	return nil
}
