package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/sibintb/submanager/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, fmt.Sprintf("Error: %s", err))
		os.Exit(1)
	}
}
