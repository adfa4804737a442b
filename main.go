package main

import (
	"os"

	"github.com/echomind-ai/echomind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
