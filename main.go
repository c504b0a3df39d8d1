package main

import (
	"os"

	"github.com/example/daily-planner/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
