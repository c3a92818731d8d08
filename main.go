package main

import (
	"fmt"
	"os"

	"github.com/bookbrief/bookbrief/internal/cli"
	"github.com/bookbrief/bookbrief/internal/log"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	defer log.Sync()

	root := cli.NewRootCommand(fmt.Sprintf("%s (%s)", Version, Commit))
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Sync()
		os.Exit(1)
	}
}
