package main

import (
	"os"

	"github.com/avoskres/defectbase/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
