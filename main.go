package main

import (
	"wedsync-api/core/logger"
	"wedsync-api/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("Server:Run:Error", "error", err)
	}
}
