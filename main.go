package main

import (
	"embed"
	"os"

	"subtitle-player/internal/cli"
)

//go:embed frontend
var appAssets embed.FS

func main() {
	if err := cli.Execute(appAssets); err != nil {
		os.Exit(1)
	}
}
