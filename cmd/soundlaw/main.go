package main

import (
	"os"

	"github.com/conlangtools/soundlaw/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
