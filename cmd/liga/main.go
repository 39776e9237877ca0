package main

import (
	"os"

	"github.com/wonny/liga/backend/cmd/liga/commands"
)

// main is the entry point for the liga CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/liga [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
