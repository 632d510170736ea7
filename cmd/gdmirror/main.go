package main

import (
	"github.com/gdmirror/gdmirror/internal/cli"
)

func main() {
	cli.Execute()
}
