package main

import "github.com/pfrederiksen/ibew-locals/internal/cli"

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.Execute(version)
}
