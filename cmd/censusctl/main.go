package main

import (
	"log/slog"
	"os"

	"censuskit/cmd/censusctl/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err == nil {
		slog.Debug("loaded .env file")
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
