package main

import (
	"os"

	"certdesk/cmd/certctl/app"
)

var version string

func main() {
	cmd := app.NewCommand(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
