package main

import (
	"os"

	"github.com/fmuoria/resume-shortlisting/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
