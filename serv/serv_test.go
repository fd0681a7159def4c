package serv

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap/zaptest"
)

const testSchema = `
type Chapter {
	id: ID!
	title: String
}

type Topic {
	id: ID!
	title: String
	chapters: [Chapter] @relation(collection: "chapters")
}

type Query {
	topics(limit: Int): [Topic] @relation(collection: "topics")
}
`

const testConfig = `
app_name: "Lookahead Test"
schema_file: schema.graphql
log_level: debug
max_depth: 4
default_limit: 25
max_limit: 100
default_sort: "-createdAt"
database:
  connection_string: mongodb://db:27017
  name: courses
  connect_timeout: 3s
`

func newTestFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config/dev.yml", []byte(testConfig), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/config/schema.graphql", []byte(testSchema), 0o644))
	return fs
}

func TestReadInConfigFS(t *testing.T) {
	conf, err := ReadInConfigFS("/config/dev.yml", newTestFS(t))
	require.NoError(t, err)

	assert.Equal(t, "Lookahead Test", conf.AppName)
	assert.Equal(t, "/config", conf.ConfigPath)
	assert.Equal(t, "schema.graphql", conf.SchemaFile)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, 4, conf.Core.MaxDepth)
	assert.Equal(t, int64(25), conf.Core.DefaultLimit)
	assert.Equal(t, int64(100), conf.Core.MaxLimit)
	assert.Equal(t, "-createdAt", conf.Core.DefaultSort)
	assert.Equal(t, "mongodb://db:27017", conf.DB.ConnString)
	assert.Equal(t, "courses", conf.DB.DBName)
	assert.Equal(t, 3*time.Second, conf.DB.ConnectTimeout)
	assert.Equal(t, 10*time.Second, conf.SchemaPollDuration)
	assert.Equal(t, "/config/schema.graphql", conf.AbsolutePath(conf.SchemaFile))
}

func TestReadInConfigInherits(t *testing.T) {
	fs := newTestFS(t)
	require.NoError(t, afero.WriteFile(fs, "/config/prod.yml", []byte(`
inherits: dev
production: true
log_level: warn
database:
  name: courses_prod
`), 0o644))

	conf, err := ReadInConfigFS("/config/prod.yml", fs)
	require.NoError(t, err)

	assert.True(t, conf.Production)
	assert.Equal(t, "warn", conf.LogLevel)
	assert.Equal(t, "courses_prod", conf.DB.DBName)
	assert.Equal(t, "mongodb://db:27017", conf.DB.ConnString)
	assert.Equal(t, 4, conf.Core.MaxDepth)
	assert.True(t, conf.ShouldUseJSONLogs())
}

func TestNewConfigDefaults(t *testing.T) {
	conf, err := NewConfig("app_name: demo", "yaml")
	require.NoError(t, err)

	assert.Equal(t, "demo", conf.AppName)
	assert.Equal(t, "schema.graphql", conf.SchemaFile)
	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, 16, conf.Core.MaxDepth)
	assert.Equal(t, int64(20), conf.Core.DefaultLimit)
	assert.Equal(t, "mongodb://localhost:27017", conf.DB.ConnString)
	assert.Equal(t, 10*time.Second, conf.DB.ConnectTimeout)
	assert.False(t, conf.ShouldUseJSONLogs())
}

func TestNewConfigEnvOverride(t *testing.T) {
	t.Setenv("LA_DATABASE_CONNECTION_STRING", "mongodb://env:27017")
	t.Setenv("LA_MAX_DEPTH", "3")

	conf, err := NewConfig("app_name: demo", "yaml")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://env:27017", conf.DB.ConnString)
	assert.Equal(t, 3, conf.Core.MaxDepth)
}

func TestNewConfigInvalid(t *testing.T) {
	_, err := NewConfig("default_limit: 50\nmax_limit: 10", "yaml")
	assert.Error(t, err)
}

func TestGetConfigName(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"", "dev"},
		{"development", "dev"},
		{"Production", "prod"},
		{"stage", "stage"},
		{"test", "test"},
		{"qa", "qa"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("GO_ENV", tt.env)
			assert.Equal(t, tt.want, GetConfigName())
		})
	}
}

func TestServiceCompile(t *testing.T) {
	fs := newTestFS(t)
	conf, err := ReadInConfigFS("/config/dev.yml", fs)
	require.NoError(t, err)

	s, err := NewService(conf, zaptest.NewLogger(t), fs)
	require.NoError(t, err)
	defer s.Close(context.Background()) //nolint:errcheck

	qs, err := s.Compile(context.Background(), `{ topics { title chapters { title } } }`, "", nil)
	require.NoError(t, err)
	require.Len(t, qs, 1)

	q := qs[0]
	assert.Equal(t, "topics", q.Collection)
	assert.Equal(t, []bson.D{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: int64(25)}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "chapters"},
			{Key: "localField", Value: "chapters.typeId"},
			{Key: "foreignField", Value: "id"},
			{Key: "as", Value: "chapters"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "chapters", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$chapters", bson.A{}}}}},
			{Key: "id", Value: 1},
		}}},
	}, q.Stages)
}

func TestCheckSchemaReloads(t *testing.T) {
	fs := newTestFS(t)
	conf, err := ReadInConfigFS("/config/dev.yml", fs)
	require.NoError(t, err)
	conf.SchemaPollDuration = 0

	s, err := NewService(conf, zaptest.NewLogger(t), fs)
	require.NoError(t, err)
	defer s.Close(context.Background()) //nolint:errcheck

	changed, err := s.checkSchema()
	require.NoError(t, err)
	assert.False(t, changed)

	before := s.Engine()
	require.NoError(t, afero.WriteFile(fs, "/config/schema.graphql",
		[]byte(testSchema+"\ntype Video {\n\tid: ID!\n}\n"), 0o644))

	changed, err = s.checkSchema()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotSame(t, before, s.Engine())

	// a broken schema keeps the last good engine
	require.NoError(t, afero.WriteFile(fs, "/config/schema.graphql", []byte("type {"), 0o644))
	current := s.Engine()
	_, err = s.checkSchema()
	assert.Error(t, err)
	assert.Same(t, current, s.Engine())
}

func TestNewServiceMissingSchema(t *testing.T) {
	conf, err := NewConfig("schema_file: missing.graphql\nconfig_path: /config", "yaml")
	require.NoError(t, err)

	_, err = NewService(conf, nil, afero.NewMemMapFs())
	assert.Error(t, err)
}

func TestMergeResults(t *testing.T) {
	got := mergeResults([]bson.D{
		{{Key: "a", Value: bson.A{}}},
		{{Key: "topics", Value: nil}},
	})
	assert.Equal(t, bson.D{{Key: "a", Value: bson.A{}}, {Key: "topics", Value: nil}}, got)
}
