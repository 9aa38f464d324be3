// Package main provides the castbot binary: it resolves class profiles,
// replays recorded scenarios through the decision engine and plays them
// in real time.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
