// Command inspector reports type metadata of Go packages and generates
// registration tables for the runtime inspector.
package main

import (
	"os"

	"github.com/anoideaopen/inspector/core/logger"
	"github.com/joho/godotenv"
)

func main() {
	// .env must be loaded before the logger reads its environment.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		logger.Logger().Error(err)
		os.Exit(1)
	}
}
