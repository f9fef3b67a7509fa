package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "airaware: panic: %v\n\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	if err := newRootCmd(cliDeps{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
