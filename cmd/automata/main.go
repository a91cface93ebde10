package main

import (
	"os"

	"github.com/solatis/automata/cmd/automata/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
