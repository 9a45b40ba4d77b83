package main

import (
	"os"

	"github.com/unicfd/uniflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
