package main

import (
	"os"

	"github.com/heissler3/getnzbs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
