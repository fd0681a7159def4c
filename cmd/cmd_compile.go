package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dosco/lookahead/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	varsJSON string
	opName   string
)

// compileCmd is the cobra CLI command for the compile subcommand
func compileCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "compile <query-file>",
		Short: "Compile a GraphQL query into aggregation pipelines",
		Long: "Compile every root field of a GraphQL query into a MongoDB aggregation\n" +
			"pipeline and print the query DSL. Use - to read the query from stdin.",
		Args: cobra.ExactArgs(1),
		Run:  cmdCompile,
	}
	addQueryFlags(c)
	return c
}

func addQueryFlags(c *cobra.Command) {
	c.Flags().StringVar(&varsJSON, "vars", "", "query variables as a JSON object")
	c.Flags().StringVar(&opName, "op", "", "name of the operation to run")
}

func cmdCompile(_ *cobra.Command, args []string) {
	setup(cpath)

	query, vars, err := readQuery(args[0], varsJSON)
	if err != nil {
		log.Fatal(err)
	}

	s := newService()
	qs, err := s.Compile(context.Background(), query, opName, vars)
	if err != nil {
		log.Fatalf("Failed to compile: %s", err)
	}

	if err := printQueries(os.Stdout, qs); err != nil {
		log.Fatal(err)
	}
}

// readQuery loads the query text from a file or stdin and parses the
// variables JSON
func readQuery(name, varsJSON string) (string, map[string]any, error) {
	var b []byte
	var err error

	if name == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", nil, errors.Wrap(err, "reading query")
	}

	var vars map[string]any
	if varsJSON != "" {
		if err := json.Unmarshal([]byte(varsJSON), &vars); err != nil {
			return "", nil, errors.Wrap(err, "parsing --vars")
		}
	}
	return string(b), vars, nil
}

// printQueries writes the DSL of each query on its own line
func printQueries(w io.Writer, qs []*core.Query) error {
	for _, q := range qs {
		b, err := q.DSL()
		if err != nil {
			return errors.Wrapf(err, "encoding %s", q.FieldName)
		}
		if _, err := fmt.Fprintln(w, string(b)); err != nil {
			return err
		}
	}
	return nil
}
