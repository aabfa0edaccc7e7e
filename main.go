// Package main is the entry point for the pyrun CLI, a terminal frontend for
// a remote sandboxed Python execution backend.
package main

import (
	"pyrun/cli/cmd"
)

func main() {
	cmd.Execute()
}
