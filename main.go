package main

import (
	"os"

	"github.com/AlexMoto69/uplearn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
