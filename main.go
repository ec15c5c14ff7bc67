package main

import (
	"os"

	"github.com/axwifi/musched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
