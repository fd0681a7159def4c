package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// execCmd is the cobra CLI command for the exec subcommand
func execCmd() *cobra.Command {
	c := &cobra.Command{
		Use:     "exec <query-file>",
		Aliases: []string{"run"},
		Short:   "Run a GraphQL query against the database",
		Args:    cobra.ExactArgs(1),
		Run:     cmdExec,
	}
	addQueryFlags(c)
	return c
}

func cmdExec(_ *cobra.Command, args []string) {
	setup(cpath)

	query, vars, err := readQuery(args[0], varsJSON)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	s := newService()
	defer s.Close(ctx) //nolint:errcheck

	res, err := s.Execute(ctx, query, opName, vars)
	if err != nil {
		log.Fatalf("Failed to execute: %s", err)
	}
	fmt.Println(string(res))
}
