// Package serv wires configuration, logging, the compiler engine and the
// MongoDB executor into a single service.
package serv

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dosco/lookahead/core"
	"github.com/dosco/lookahead/mongodriver"
	"github.com/dosco/lookahead/serv/internal/util"
	"github.com/spf13/afero"
	"github.com/vektah/gqlparser/v2/ast"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var version string

const defaultConnectTimeout = 10 * time.Second

// Service compiles GraphQL queries and runs them against MongoDB. The
// database connection is opened on first use.
type Service struct {
	conf   *Config
	log    *zap.Logger
	fs     afero.Fs
	engine atomic.Pointer[core.Engine]

	// hash of the schema file the current engine was built from
	schemaHash [sha256.Size]byte

	mu   sync.Mutex
	conn *mongodriver.Conn
	done chan struct{}
}

// NewLogger returns the logger described by the config
func NewLogger(conf *Config) *zap.Logger {
	return util.NewLogger(conf.ShouldUseJSONLogs(), conf.LogLevel)
}

// NewService loads the schema file from fs and creates the compiler engine.
// A nil fs reads from the OS filesystem.
func NewService(conf *Config, log *zap.Logger, fs afero.Fs) (*Service, error) {
	if conf == nil {
		return nil, fmt.Errorf("config is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	s := &Service{conf: conf, log: log, fs: fs, done: make(chan struct{})}

	b, err := s.readSchema()
	if err != nil {
		return nil, err
	}
	if err := s.reload(b); err != nil {
		return nil, err
	}

	log.Debug("service initialized",
		zap.String("app-name", conf.AppName),
		zap.String("schema", conf.SchemaFile))

	s.initSchemaWatcher()
	return s, nil
}

func (s *Service) readSchema() ([]byte, error) {
	b, err := afero.ReadFile(s.fs, s.conf.AbsolutePath(s.conf.SchemaFile))
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return b, nil
}

// reload builds a new engine from the schema source b and swaps it in
func (s *Service) reload(b []byte) error {
	schema, err := core.LoadSchema(&ast.Source{
		Name:  s.conf.AbsolutePath(s.conf.SchemaFile),
		Input: string(b),
	})
	if err != nil {
		return err
	}

	resolve, err := core.NewArgsResolver(s.conf.Core)
	if err != nil {
		return err
	}

	e, err := core.NewEngine(&s.conf.Core, schema, resolve, core.OptionSetLogger(s.log))
	if err != nil {
		return err
	}

	s.engine.Store(e)
	s.schemaHash = sha256.Sum256(b)
	return nil
}

// Engine returns the current compiler engine
func (s *Service) Engine() *core.Engine {
	return s.engine.Load()
}

// Compile compiles every root field of query
func (s *Service) Compile(ctx context.Context,
	query string,
	opName string,
	vars map[string]any,
) ([]*core.Query, error) {
	return s.Engine().Compile(ctx, query, opName, vars)
}

// Execute compiles query, runs each root field and returns the merged
// result as relaxed extended JSON in the form {"data":{...}}.
func (s *Service) Execute(ctx context.Context,
	query string,
	opName string,
	vars map[string]any,
) ([]byte, error) {
	qs, err := s.Compile(ctx, query, opName, vars)
	if err != nil {
		return nil, err
	}

	conn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]bson.D, len(qs))
	g, ctx := errgroup.WithContext(ctx)

	for i, q := range qs {
		i, q := i, q
		g.Go(func() error {
			start := time.Now()

			doc, err := conn.Execute(ctx, &mongodriver.QueryDSL{
				Operation:  core.OperationAggregate,
				Collection: q.Collection,
				FieldName:  q.FieldName,
				Singular:   q.Singular,
				Pipeline:   q.Stages,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", q.FieldName, err)
			}
			res[i] = doc

			s.log.Debug("query executed",
				zap.String("field", q.FieldName),
				zap.String("collection", q.Collection),
				zap.Duration("took", time.Since(start)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bson.MarshalExtJSON(bson.D{{Key: "data", Value: mergeResults(res)}}, false, false)
}

// mergeResults joins the single key documents of each root field in order
func mergeResults(res []bson.D) bson.D {
	data := make(bson.D, 0, len(res))
	for _, d := range res {
		data = append(data, d...)
	}
	return data
}

// connect opens the database connection once
func (s *Service) connect(ctx context.Context) (*mongodriver.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}

	timeout := s.conf.DB.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := mongodriver.Connect(cctx, s.conf.DB.ConnString, s.conf.DB.DBName)
	if err != nil {
		return nil, err
	}

	s.log.Info("connected to database", zap.String("database", s.conf.DB.DBName))
	s.conn = conn
	return conn, nil
}

// Close stops the schema watcher and closes the database connection if one
// was opened
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
	default:
		close(s.done)
	}

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close(ctx)
	s.conn = nil
	return err
}

// Version returns the build version, set with -ldflags
func Version() string {
	if version == "" {
		return "not-set"
	}
	return version
}
