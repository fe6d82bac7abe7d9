package main

import (
	"os"

	"github.com/maxwell142857/cs5500-group6/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
