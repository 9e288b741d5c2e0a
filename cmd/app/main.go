package main

import (
	"os"

	"subtitle-player/internal/cli"
)

// Development entry point; the frontend is served from ./frontend on disk.
func main() {
	if err := cli.Execute(nil); err != nil {
		os.Exit(1)
	}
}
