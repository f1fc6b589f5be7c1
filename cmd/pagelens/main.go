// Command pagelens answers questions about PDFs from their rendered pages.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/cli"
	"github.com/custodia-labs/pagelens/internal/bootstrap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is fine; API keys may come from the environment.
	_ = godotenv.Load()

	cli.SetBootstrap(bootstrap.New("").Func())
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
