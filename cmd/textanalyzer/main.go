package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
