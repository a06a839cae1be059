package main

import (
	"os"

	"github.com/bianoble/confpatch/cmd/confpatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
