package main

import (
	"os"

	"github.com/osintlab/osint-platform/cmd/osintctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
