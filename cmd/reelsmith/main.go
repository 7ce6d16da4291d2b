package main

import (
	"reelsmith/cmd/handlers"
	"reelsmith/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
