package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd is the cobra CLI command for the version subcommand
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version information",
		Run: func(*cobra.Command, []string) {
			fmt.Println(BuildDetails())
		},
	}
}

// BuildDetails returns the version, commit and build date set with -ldflags
func BuildDetails() string {
	if version == "" {
		return `
Lookahead (unknown version)
Compiles GraphQL selections into MongoDB aggregation pipelines.

For documentation, visit https://github.com/dosco/lookahead
`
	}

	return fmt.Sprintf(`
Lookahead %v
Compiles GraphQL selections into MongoDB aggregation pipelines.

Commit SHA-1          : %v
Commit timestamp      : %v
Go version            : %v

`,
		version,
		commit,
		date,
		runtime.Version())
}
