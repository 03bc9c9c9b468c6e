package main

import (
	"github.com/cityrunners/server/internal/cli"
)

func main() {
	cli.Execute()
}
