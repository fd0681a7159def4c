// Package mongodriver runs compiled aggregation queries against MongoDB.
package mongodriver

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Conn executes queries on a single database.
type Conn struct {
	db     *mongo.Database
	client *mongo.Client
	owned  bool
}

// Connect opens a client for uri and checks that the server is reachable.
// The client is disconnected by Close.
func Connect(ctx context.Context, uri, dbName string) (*Conn, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodriver: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodriver: ping: %w", err)
	}

	c := NewConn(client, dbName)
	c.owned = true
	return c, nil
}

// NewConn wraps an existing client. Close leaves the client connected.
func NewConn(client *mongo.Client, dbName string) *Conn {
	return &Conn{
		db:     client.Database(dbName),
		client: client,
	}
}

// Database returns the database queries run on
func (c *Conn) Database() *mongo.Database {
	return c.db
}

// Close disconnects the client if it was opened by Connect.
func (c *Conn) Close(ctx context.Context) error {
	if !c.owned {
		return nil
	}
	return c.client.Disconnect(ctx)
}

// Query parses and executes a query DSL document and returns the result as
// relaxed extended JSON.
func (c *Conn) Query(ctx context.Context, query string) ([]byte, error) {
	q, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	doc, err := c.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	return bson.MarshalExtJSON(doc, false, false)
}

// Execute runs q and returns its result keyed by the field name. Eg.
// {"topics":[...]} or {"topic":{...}} for singular queries.
func (c *Conn) Execute(ctx context.Context, q *QueryDSL) (bson.D, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.executeAggregate(ctx, q)
}

func (c *Conn) executeAggregate(ctx context.Context, q *QueryDSL) (bson.D, error) {
	coll := c.db.Collection(q.Collection)

	pipeline := make(bson.A, len(q.Pipeline))
	for i, stage := range q.Pipeline {
		pipeline[i] = stage
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongodriver: aggregate: %w", err)
	}

	var results []bson.D
	if err := cursor.All(ctx, &results); err != nil {
		cursor.Close(ctx)
		return nil, fmt.Errorf("mongodriver: aggregate results: %w", err)
	}
	cursor.Close(ctx)

	return wrapResults(q, results), nil
}

// wrapResults keys the documents by the query's field name. Singular
// queries yield the first document or null, lists are never null.
func wrapResults(q *QueryDSL, results []bson.D) bson.D {
	for i := range results {
		results[i] = stripObjectIDs(results[i])
	}

	var v any
	switch {
	case q.Singular && len(results) > 0:
		v = results[0]
	case q.Singular:
		v = nil
	case results == nil:
		v = bson.A{}
	default:
		v = results
	}
	return bson.D{{Key: q.FieldName, Value: v}}
}

// stripObjectIDs removes the _id key from d and from joined documents.
// Documents are identified by their id field.
func stripObjectIDs(d bson.D) bson.D {
	out := make(bson.D, 0, len(d))
	for _, e := range d {
		if e.Key == "_id" {
			continue
		}
		e.Value = stripValue(e.Value)
		out = append(out, e)
	}
	return out
}

func stripValue(v any) any {
	switch v := v.(type) {
	case bson.D:
		return stripObjectIDs(v)
	case bson.A:
		for i := range v {
			v[i] = stripValue(v[i])
		}
		return v
	default:
		return v
	}
}
