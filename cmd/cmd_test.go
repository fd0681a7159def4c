package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dosco/lookahead/core"
	"github.com/dosco/lookahead/serv"
	"github.com/vektah/gqlparser/v2/ast"
)

func TestInitConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")

	if err := initConfigDir(dir, "dev", "course-catalog"); err != nil {
		t.Fatalf("initConfigDir: %s", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "dev.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `app_name: "Course Catalog Development"`) {
		t.Errorf("expected title cased app name, got %q", string(b))
	}

	conf, err := serv.ReadInConfig(filepath.Join(dir, "dev"))
	if err != nil {
		t.Fatalf("ReadInConfig: %s", err)
	}
	if conf.DB.DBName != "course-catalog_development" {
		t.Errorf("expected database name course-catalog_development, got %q", conf.DB.DBName)
	}

	s, err := serv.NewService(conf, nil, nil)
	if err != nil {
		t.Fatalf("NewService with generated schema: %s", err)
	}
	defer s.Close(context.Background()) //nolint:errcheck

	qs, err := s.Compile(context.Background(), `{ topics { title chapters { title } } }`, "", nil)
	if err != nil {
		t.Fatalf("Compile: %s", err)
	}
	if len(qs) != 1 || qs[0].Collection != "topics" {
		t.Errorf("expected one query on topics, got %+v", qs)
	}
}

func TestReadQuery(t *testing.T) {
	name := filepath.Join(t.TempDir(), "q.graphql")
	if err := os.WriteFile(name, []byte(`{ topics { title } }`), 0o600); err != nil {
		t.Fatal(err)
	}

	q, vars, err := readQuery(name, `{"limit": 5}`)
	if err != nil {
		t.Fatal(err)
	}
	if q != `{ topics { title } }` {
		t.Errorf("unexpected query %q", q)
	}
	if vars["limit"] != float64(5) {
		t.Errorf("expected limit var 5, got %v", vars["limit"])
	}

	if _, _, err := readQuery(name, `{bad`); err == nil {
		t.Error("expected error for invalid vars")
	}
	if _, _, err := readQuery(filepath.Join(t.TempDir(), "missing"), ""); err == nil {
		t.Error("expected error for missing query file")
	}
}

func TestPrintQueries(t *testing.T) {
	schema, err := core.LoadSchema(&ast.Source{Name: "schema", Input: `
type Topic {
	id: ID!
	title: String
}

type Query {
	topics(limit: Int): [Topic] @relation(collection: "topics")
	topic(id: ID!): Topic @relation(collection: "topics")
}
`})
	if err != nil {
		t.Fatal(err)
	}

	conf := core.Config{MaxDepth: 16, DefaultLimit: 20}
	resolve, err := core.NewArgsResolver(conf)
	if err != nil {
		t.Fatal(err)
	}

	e, err := core.NewEngine(&conf, schema, resolve)
	if err != nil {
		t.Fatal(err)
	}

	qs, err := e.Compile(context.Background(),
		`query { topics(limit: 2) { title } topic(id: "t1") { title } }`, "", nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := printQueries(&buf, qs); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"field_name":"topics"`) ||
		!strings.Contains(lines[0], `"operation":"aggregate"`) {
		t.Errorf("unexpected topics DSL %q", lines[0])
	}
	if !strings.Contains(lines[1], `"singular":true`) {
		t.Errorf("expected singular topic DSL, got %q", lines[1])
	}
}

func TestVersionCmd(t *testing.T) {
	output := captureStdout(func() {
		versionCmd().Run(nil, nil)
	})

	if !strings.Contains(output, "Lookahead") {
		t.Errorf("expected build details, got %q", output)
	}
}

// captureStdout captures stdout output from a function
func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r) //nolint:errcheck
	return buf.String()
}
