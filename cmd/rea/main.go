// Command rea drives Render/Extension/App pipelines over stored timelines.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/rea/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
