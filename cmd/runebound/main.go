// Command runebound validates content, evaluates expressions and runs
// battle scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/runebound/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
