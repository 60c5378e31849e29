package main

import (
	"os"

	"github.com/dailyink/dailyink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
