package main

import (
	"os"

	"wrapgen/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args))
}
