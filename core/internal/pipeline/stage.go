// Package pipeline holds the MongoDB aggregation stage primitives the
// compiler emits and a builder that keeps them in order.
package pipeline

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Kind int

const (
	KindMatch Kind = iota + 1
	KindSort
	KindSkip
	KindLimit
	KindLookup
	KindProject
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "$match"
	case KindSort:
		return "$sort"
	case KindSkip:
		return "$skip"
	case KindLimit:
		return "$limit"
	case KindLookup:
		return "$lookup"
	case KindProject:
		return "$project"
	default:
		return "unknown"
	}
}

// Stage is a single aggregation step. BSON returns the exact document
// MongoDB expects for the stage.
type Stage interface {
	Kind() Kind
	BSON() bson.D
}

type Match struct {
	Filter bson.M
}

func (Match) Kind() Kind { return KindMatch }

func (s Match) BSON() bson.D {
	return bson.D{{Key: "$match", Value: s.Filter}}
}

type Sort struct {
	Spec bson.D
}

func (Sort) Kind() Kind { return KindSort }

func (s Sort) BSON() bson.D {
	return bson.D{{Key: "$sort", Value: s.Spec}}
}

type Skip int64

func (Skip) Kind() Kind { return KindSkip }

func (s Skip) BSON() bson.D {
	return bson.D{{Key: "$skip", Value: int64(s)}}
}

type Limit int64

func (Limit) Kind() Kind { return KindLimit }

func (s Limit) BSON() bson.D {
	return bson.D{{Key: "$limit", Value: int64(s)}}
}

type Lookup struct {
	Join JoinSpec
}

func (Lookup) Kind() Kind { return KindLookup }

func (s Lookup) BSON() bson.D {
	return bson.D{{Key: "$lookup", Value: s.Join.lookup()}}
}

type Project struct {
	Fields Projection
}

func (Project) Kind() Kind { return KindProject }

func (s Project) BSON() bson.D {
	return bson.D{{Key: "$project", Value: bson.D(s.Fields)}}
}

// Projection is an ordered output key to value map for a $project stage.
type Projection bson.D

// Set replaces the value of an existing key in place or appends a new key.
func (p *Projection) Set(key string, val any) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = val
			return
		}
	}
	*p = append(*p, bson.E{Key: key, Value: val})
}

func (p Projection) Get(key string) (any, bool) {
	for _, e := range p {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// ArrayElemAt returns the expression picking the element at idx of the
// array found at path.
func ArrayElemAt(path string, idx int) bson.D {
	return bson.D{{Key: "$arrayElemAt", Value: bson.A{"$" + path, idx}}}
}

// IfNull returns the expression yielding the value at path or def when the
// value is null or missing.
func IfNull(path string, def any) bson.D {
	return bson.D{{Key: "$ifNull", Value: bson.A{"$" + path, def}}}
}
