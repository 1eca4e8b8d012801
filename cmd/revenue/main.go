package main

import (
	"fmt"
	"os"

	"revenue-analytics-service/cmd/revenue/cmd"

	"github.com/joho/godotenv"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Optional .env overlay; absence is not an error.
	_ = godotenv.Load()

	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
