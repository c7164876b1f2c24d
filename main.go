package main

import (
	"os"

	"github.com/martijnhiemstra/selfsuffient/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
