package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/serverwrap/cmd/serverwrap"
	"github.com/arthur-debert/serverwrap/internal/version"
)

func main() {
	rootCmd := serverwrap.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "SERVERWRAP",
		Section: "1",
		Source:  "serverwrap " + version.Version,
		Manual:  "serverwrap manual",
	}

	if err := doc.GenMan(rootCmd, header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
