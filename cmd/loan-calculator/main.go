package main

import (
	"os"

	"github.com/iwvelando/loan-calculator/cmd/loan-calculator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
