package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNewTruncatesName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short name kept", "Topic", "Topic"},
		{"exactly thirty", "ABCDEFGHIJKLMNOPQRSTUVWXYZabcd", "ABCDEFGHIJKLMNOPQRSTUVWXYZabcd"},
		{"long name cut", "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefgh", "ABCDEFGHIJKLMNOPQRSTUVWXYZabcd"},
		{"multibyte runes", "ÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜ", "ÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜÜ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.in).Name())
		})
	}
}

func TestBuilderPipeline(t *testing.T) {
	var p Projection
	p.Set("title", 1)
	p.Set("id", 1)

	b := New("Topic").
		Match(bson.M{"status": "published"}).
		Sort(bson.D{{Key: "createdAt", Value: -1}}).
		Skip(5).
		Limit(10).
		Project(p)

	want := []bson.D{
		{{Key: "$match", Value: bson.M{"status": "published"}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: int64(5)}},
		{{Key: "$limit", Value: int64(10)}},
		{{Key: "$project", Value: bson.D{{Key: "title", Value: 1}, {Key: "id", Value: 1}}}},
	}
	assert.Equal(t, want, b.Pipeline())
	assert.Equal(t, 5, b.Len())

	kinds := make([]Kind, 0, b.Len())
	for _, s := range b.Stages() {
		kinds = append(kinds, s.Kind())
	}
	assert.Equal(t, []Kind{KindMatch, KindSort, KindSkip, KindLimit, KindProject}, kinds)
}

func TestEmptyBuilderPipeline(t *testing.T) {
	got := New("Topic").Pipeline()
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestProjectionSetOverrides(t *testing.T) {
	var p Projection
	p.Set("id", "$key")
	p.Set("name", 1)
	p.Set("id", 1)

	assert.Equal(t, Projection{{Key: "id", Value: 1}, {Key: "name", Value: 1}}, p)

	v, ok := p.Get("name")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = p.Get("missing")
	assert.False(t, ok)
}

func TestEqualityJoinBSON(t *testing.T) {
	b := New("Topic").Lookup(EqualityJoin{
		From:         "Chapter",
		As:           "chapter",
		LocalField:   "chapter.typeId",
		ForeignField: "id",
	})

	want := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: "Chapter"},
		{Key: "localField", Value: "chapter.typeId"},
		{Key: "foreignField", Value: "id"},
		{Key: "as", Value: "chapter"},
	}}}
	assert.Equal(t, want, b.Pipeline()[0])
}

func TestConditionalJoinBSON(t *testing.T) {
	var p Projection
	p.Set("title", 1)
	nested := New("Topic").Project(p)

	tests := []struct {
		name   string
		isList bool
		cond   bson.D
	}{
		{
			name:   "list relation matches with $in",
			isList: true,
			cond: bson.D{{Key: "$in", Value: bson.A{
				"$id",
				bson.D{{Key: "$ifNull", Value: bson.A{"$$topicsId", bson.A{}}}},
			}}},
		},
		{
			name:   "singular relation matches with $eq",
			isList: false,
			cond:   bson.D{{Key: "$eq", Value: bson.A{"$id", "$$topicsId"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := ConditionalJoin{
				From: "Topic",
				As:   "topics",
				Let: []Variable{{
					Name:         "topicsId",
					Source:       "topics.typeId",
					ForeignField: "id",
					IsList:       tt.isList,
				}},
				Pipeline: nested,
			}

			want := bson.D{
				{Key: "from", Value: "Topic"},
				{Key: "let", Value: bson.D{{Key: "topicsId", Value: "$topics.typeId"}}},
				{Key: "pipeline", Value: bson.A{
					bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: tt.cond}}}},
					bson.D{{Key: "$project", Value: bson.D{{Key: "title", Value: 1}}}},
				}},
				{Key: "as", Value: "topics"},
			}
			assert.Equal(t, want, Lookup{Join: j}.BSON()[0].Value)
			assert.Equal(t, "Topic", j.Target())
			assert.Equal(t, "topics", j.Alias())
		})
	}
}

func TestExpressionHelpers(t *testing.T) {
	assert.Equal(t,
		bson.D{{Key: "$arrayElemAt", Value: bson.A{"$chapter", 0}}},
		ArrayElemAt("chapter", 0))
	assert.Equal(t,
		bson.D{{Key: "$ifNull", Value: bson.A{"$tags", bson.A{}}}},
		IfNull("tags", bson.A{}))
}
