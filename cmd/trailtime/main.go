package main

import (
	"github.com/rhale/trailtime/internal/cli"
)

func main() {
	cli.Execute()
}
