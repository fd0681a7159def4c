package pipeline

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// JoinSpec describes the body of a $lookup stage.
type JoinSpec interface {
	Target() string
	Alias() string
	lookup() bson.D
}

// EqualityJoin is a plain localField / foreignField $lookup.
type EqualityJoin struct {
	From         string
	As           string
	LocalField   string
	ForeignField string
}

func (j EqualityJoin) Target() string { return j.From }
func (j EqualityJoin) Alias() string  { return j.As }

func (j EqualityJoin) lookup() bson.D {
	return bson.D{
		{Key: "from", Value: j.From},
		{Key: "localField", Value: j.LocalField},
		{Key: "foreignField", Value: j.ForeignField},
		{Key: "as", Value: j.As},
	}
}

// Variable binds a field of the outer document to a pipeline variable that
// the joined side matches its ForeignField against.
type Variable struct {
	Name         string
	Source       string
	ForeignField string
	IsList       bool
}

func (v Variable) condition() bson.D {
	ref := "$$" + v.Name
	if v.IsList {
		return bson.D{{Key: "$in", Value: bson.A{"$" + v.ForeignField, bson.D{{Key: "$ifNull", Value: bson.A{ref, bson.A{}}}}}}}
	}
	return bson.D{{Key: "$eq", Value: bson.A{"$" + v.ForeignField, ref}}}
}

// ConditionalJoin is a $lookup with let bindings and a nested pipeline.
type ConditionalJoin struct {
	From     string
	As       string
	Let      []Variable
	Pipeline *Builder
}

func (j ConditionalJoin) Target() string { return j.From }
func (j ConditionalJoin) Alias() string  { return j.As }

func (j ConditionalJoin) lookup() bson.D {
	let := make(bson.D, 0, len(j.Let))
	for _, v := range j.Let {
		let = append(let, bson.E{Key: v.Name, Value: "$" + v.Source})
	}

	stages := bson.A{}
	if m := j.matchVars(); m != nil {
		stages = append(stages, m)
	}
	if j.Pipeline != nil {
		for _, s := range j.Pipeline.Pipeline() {
			stages = append(stages, s)
		}
	}

	return bson.D{
		{Key: "from", Value: j.From},
		{Key: "let", Value: let},
		{Key: "pipeline", Value: stages},
		{Key: "as", Value: j.As},
	}
}

func (j ConditionalJoin) matchVars() bson.D {
	var expr any
	switch len(j.Let) {
	case 0:
		return nil
	case 1:
		expr = j.Let[0].condition()
	default:
		conds := make(bson.A, 0, len(j.Let))
		for _, v := range j.Let {
			conds = append(conds, v.condition())
		}
		expr = bson.D{{Key: "$and", Value: conds}}
	}
	return bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: expr}}}}
}
