// Command digest builds persona-driven digests from a folder of documents.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/persona-digest/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
