package main

import (
	"os"

	"github.com/Muhsiinn/Jonas-AI/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
