// Command langboard runs the language-statistics HTTP service.
package main

import (
	"os"

	langboard "github.com/langboard/langboard/core"
	"github.com/langboard/langboard/lib"
	"github.com/langboard/langboard/schemas"
	"github.com/langboard/langboard/transports/http/handlers"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func main() {
	logger := langboard.NewDefaultLogger(schemas.LogLevelInfo, schemas.LoggerOutputTypeJSON)

	config, err := lib.LoadConfig(logger)
	if err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	logger.SetLevel(config.LogLevel)
	if config.LogStyle == schemas.LoggerOutputTypePretty {
		logger = langboard.NewDefaultLogger(config.LogLevel, config.LogStyle)
	}

	server := handlers.NewLangboardHTTPServer(Version, config, logger)
	if err := server.Bootstrap(); err != nil {
		logger.Fatal("failed to bootstrap server: %v", err)
	}
	if err := server.Start(); err != nil {
		logger.Fatal("server exited with error: %v", err)
	}
}
