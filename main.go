// The main package for the urltopdf executable.
package main

import (
	"github.com/saahil-mehta/urltopdf/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
