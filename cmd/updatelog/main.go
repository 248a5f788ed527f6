// Command updatelog keeps an ordered log of client meeting updates.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/updatelog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
