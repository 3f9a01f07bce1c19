package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/altinukshini/urlgrep/internal/cli"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	if err := cli.Execute(version); err != nil {
		if errors.Is(err, cli.ErrSearchCancelled) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
