package main

import (
	"os"

	"github.com/bnema/neuroledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
