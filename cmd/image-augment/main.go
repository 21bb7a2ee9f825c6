package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/image-augment/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cli.Version, cli.BuildTime, cli.GitCommit = Version, BuildTime, GitCommit

	if err := cli.RootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "image-augment: %v\n", err)
		os.Exit(1)
	}
}
