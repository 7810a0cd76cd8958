// Package main provides trackerctl, a command line client working directly
// on the progress storage of the fitness tracker.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(newRootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
